package handler

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/budget-manager-api/internal/usecases/budgeting"
	"github.com/vfg2006/budget-manager-api/pkg/apiErrors"
)

// GetBudgetStatus devolve a situação orçamentária das marcas. Aceita o filtro
// opcional ?brand_id=; sem ele, lista todas as marcas ativas.
func GetBudgetStatus(service budgeting.BudgetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetBudgetStatus")

		brandID := r.URL.Query().Get("brand_id")

		statuses, err := service.GetBudgetStatus(brandID)
		if err != nil {
			var budgetErr *budgeting.BudgetError
			if errors.As(err, &budgetErr) {
				apiErrors.WriteError(w, budgetErr.Code, budgetErr.Error(), nil)
				return
			}

			logrus.WithError(err).Error("Erro ao consultar situação orçamentária")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao consultar situação orçamentária", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(statuses); err != nil {
			logrus.WithError(err).Error("Erro ao enviar resposta de situação orçamentária")
		}
	}
}
