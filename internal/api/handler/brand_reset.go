package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/budget-manager-api/internal/usecases/reconciling"
	"github.com/vfg2006/budget-manager-api/pkg/apiErrors"
)

type BrandResetRequest struct {
	Period string `json:"period"` // daily | monthly | both
}

// ForceBrandReset zera os contadores de uma única marca sob demanda e
// reconcilia as campanhas dela. Operação administrativa.
func ForceBrandReset(service reconciling.Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - ForceBrandReset")

		brandID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if brandID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID da marca não fornecido", nil)
			return
		}

		var req BrandResetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		result, err := service.ForceBrandReset(r.Context(), brandID, req.Period)
		if err != nil {
			handleReconcileError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			logrus.WithError(err).Error("Erro ao enviar resposta de reset de marca")
		}
	}
}

func handleReconcileError(w http.ResponseWriter, err error) {
	var reconcileErr *reconciling.ReconcileError
	if errors.As(err, &reconcileErr) {
		var details any
		if reconcileErr.BrandID != "" {
			details = map[string]any{"brand_id": reconcileErr.BrandID}
		}
		apiErrors.WriteError(w, reconcileErr.Code, reconcileErr.Error(), details)
		return
	}

	logrus.WithError(err).Error("Erro inesperado na reconciliação")
	apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro interno na reconciliação", nil)
}
