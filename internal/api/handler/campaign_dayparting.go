package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/budget-manager-api/internal/usecases/reconciling"
	"github.com/vfg2006/budget-manager-api/pkg/apiErrors"
)

// RefreshCampaignDayparting reavalia agora a janela de dayparting de uma única
// campanha e reconcilia as flags dela, respeitando o orçamento corrente da
// marca.
func RefreshCampaignDayparting(service reconciling.Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RefreshCampaignDayparting")

		campaignID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if campaignID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID da campanha não fornecido", nil)
			return
		}

		state, err := service.RefreshCampaignDayparting(r.Context(), campaignID)
		if err != nil {
			handleReconcileError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(state); err != nil {
			logrus.WithError(err).Error("Erro ao enviar resposta de atualização de dayparting")
		}
	}
}
