package handler

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/budget-manager-api/internal/domain"
	"github.com/vfg2006/budget-manager-api/internal/usecases/dayparting"
	"github.com/vfg2006/budget-manager-api/pkg/apiErrors"
)

// GetDaypartingStatus devolve a situação de dayparting das campanhas, avaliada
// no momento da chamada. Aceita o filtro opcional ?campaign_id=.
func GetDaypartingStatus(service dayparting.DaypartingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetDaypartingStatus")

		campaignID := r.URL.Query().Get("campaign_id")

		statuses, err := service.GetDaypartingStatus(campaignID)
		if err != nil {
			handleDaypartingError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(statuses); err != nil {
			logrus.WithError(err).Error("Erro ao enviar resposta de situação de dayparting")
		}
	}
}

// ValidateDaypartingSchedule valida uma agenda candidata sem persistir nada.
// A superfície de gestão usa esta validação antes de criar a agenda.
func ValidateDaypartingSchedule(service dayparting.DaypartingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - ValidateDaypartingSchedule")

		var req domain.ScheduleValidationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		if req.CampaignID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID da campanha não fornecido", nil)
			return
		}

		result, err := service.ValidateSchedule(&req)
		if err != nil {
			handleDaypartingError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			logrus.WithError(err).Error("Erro ao enviar resposta de validação de agenda")
		}
	}
}

func handleDaypartingError(w http.ResponseWriter, err error) {
	var daypartingErr *dayparting.DaypartingError
	if errors.As(err, &daypartingErr) {
		var details any
		if daypartingErr.CampaignID != "" {
			details = map[string]any{"campaign_id": daypartingErr.CampaignID}
		}
		apiErrors.WriteError(w, daypartingErr.Code, daypartingErr.Error(), details)
		return
	}

	logrus.WithError(err).Error("Erro inesperado na consulta de dayparting")
	apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro interno na consulta de dayparting", nil)
}
