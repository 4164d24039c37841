package handler

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/budget-manager-api/internal/domain"
	"github.com/vfg2006/budget-manager-api/internal/usecases/spending"
	"github.com/vfg2006/budget-manager-api/pkg/apiErrors"
)

// RecordSpend registra um gasto em uma campanha e devolve os novos totais da
// marca com o estado pós-atualização de todas as campanhas dela.
func RecordSpend(service spending.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RecordSpend")

		var req domain.RecordSpendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		if req.CampaignID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID da campanha não fornecido", nil)
			return
		}

		outcome, err := service.RecordSpend(r.Context(), &req)
		if err != nil {
			handleSpendError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(outcome); err != nil {
			logrus.WithError(err).Error("Erro ao enviar resposta de gasto registrado")
		}
	}
}

func handleSpendError(w http.ResponseWriter, err error) {
	var spendErr *spending.SpendError
	if errors.As(err, &spendErr) {
		var details any
		if spendErr.CampaignID != "" {
			details = map[string]any{"campaign_id": spendErr.CampaignID}
		}
		apiErrors.WriteError(w, spendErr.Code, spendErr.Error(), details)
		return
	}

	logrus.WithError(err).Error("Erro inesperado ao registrar gasto")
	apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro interno ao registrar gasto", nil)
}
