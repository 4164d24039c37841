package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/budget-manager-api/internal/scheduler"
	"github.com/vfg2006/budget-manager-api/pkg/apiErrors"
)

// CronJobType define o tipo de cron job que será executada
const (
	CronJobTypeSweep   = "sweep"
	CronJobTypeDaily   = "daily"
	CronJobTypeMonthly = "monthly"
	CronJobTypeAll     = "all"
)

// CronJobServices contém os serviços de cron necessários para executar manualmente
type CronJobServices struct {
	ReconciliationSweepService *scheduler.ReconciliationSweepService
	BudgetResetService         *scheduler.BudgetResetService
}

// RunCronJob executa manualmente uma cron job específica. Todas as operações
// são idempotentes, então disparos repetidos são inofensivos.
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RunCronJob")

		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de cron job não especificado", nil)
			return
		}

		switch cronType {
		case CronJobTypeSweep:
			if services.ReconciliationSweepService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de varredura de reconciliação não disponível", nil)
				return
			}
			services.ReconciliationSweepService.TriggerManualRun()

		case CronJobTypeDaily:
			if services.BudgetResetService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de reset de orçamento não disponível", nil)
				return
			}
			services.BudgetResetService.TriggerManualDailyReset()

		case CronJobTypeMonthly:
			if services.BudgetResetService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de reset de orçamento não disponível", nil)
				return
			}
			services.BudgetResetService.TriggerManualMonthlyReset()

		case CronJobTypeAll:
			if services.BudgetResetService != nil {
				services.BudgetResetService.TriggerManualDailyReset()
				services.BudgetResetService.TriggerManualMonthlyReset()
			}
			if services.ReconciliationSweepService != nil {
				services.ReconciliationSweepService.TriggerManualRun()
			}

		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de cron job inválido. Valores aceitos: sweep, daily, monthly, all", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		response := map[string]any{
			"message": "Cron job iniciada com sucesso",
			"type":    cronType,
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logrus.WithError(err).Error("Erro ao enviar resposta de cron job")
		}
	}
}

// GetCronStatus retorna o status das cron jobs
func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetCronStatus")

		status := map[string]any{
			"sweep": services.ReconciliationSweepService.GetStatus(),
			"reset": services.BudgetResetService.GetStatus(),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			logrus.WithError(err).Error("Erro ao enviar status de cron jobs")
		}
	}
}
