package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/budget-manager-api/internal/config"
	"github.com/vfg2006/budget-manager-api/internal/usecases/reconciling"
)

func TestBudgetResetService_RunDailyReset(t *testing.T) {
	t.Run("Deve executar o reset diário e registrar o horário de conclusão", func(t *testing.T) {
		stub := &stubReconciler{summary: &reconciling.BatchSummary{BrandsProcessed: 2}}
		service := &BudgetResetService{
			scheduler:  gocron.NewScheduler(time.UTC),
			reconciler: stub,
		}

		err := service.RunDailyReset(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 1, stub.dailyCalls)
		assert.Equal(t, 0, stub.monthlyCalls)

		status := service.GetStatus()
		assert.Equal(t, false, status["running"])
		assert.NotEqual(t, time.Time{}, status["last_daily_completed_at"])
		assert.Equal(t, time.Time{}, status["last_monthly_completed_at"])
	})

	t.Run("Deve descartar reset sobreposto no mesmo processo", func(t *testing.T) {
		stub := &stubReconciler{summary: &reconciling.BatchSummary{}}
		service := &BudgetResetService{
			scheduler:    gocron.NewScheduler(time.UTC),
			reconciler:   stub,
			resetRunning: true,
		}

		err := service.RunDailyReset(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 0, stub.dailyCalls)
	})
}

func TestBudgetResetService_RunMonthlyReset(t *testing.T) {
	t.Run("Deve executar o reset mensal", func(t *testing.T) {
		stub := &stubReconciler{summary: &reconciling.BatchSummary{BrandsProcessed: 5}}
		service := &BudgetResetService{
			scheduler:  gocron.NewScheduler(time.UTC),
			reconciler: stub,
		}

		err := service.RunMonthlyReset(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 1, stub.monthlyCalls)
		assert.Equal(t, 0, stub.dailyCalls)
	})

	t.Run("Deve propagar erro do reconciliador", func(t *testing.T) {
		stub := &stubReconciler{err: assert.AnError}
		service := &BudgetResetService{
			scheduler:  gocron.NewScheduler(time.UTC),
			reconciler: stub,
		}

		err := service.RunMonthlyReset(context.Background())

		assert.Error(t, err)
	})
}

func TestBudgetResetService_Start(t *testing.T) {
	t.Run("Deve respeitar a flag de desabilitado sem agendar nada", func(t *testing.T) {
		stub := &stubReconciler{}
		cfg := &config.Config{
			BudgetReset: config.BudgetReset{
				DailyCronSchedule:   "0 0 * * *",
				MonthlyCronSchedule: "0 0 1 * *",
				Enabled:             false,
			},
		}
		service := NewBudgetResetService(stub, cfg)

		err := service.Start(context.Background())

		assert.NoError(t, err)
		assert.Len(t, service.scheduler.Jobs(), 0)
	})

	t.Run("Deve agendar os dois crons quando habilitado", func(t *testing.T) {
		stub := &stubReconciler{summary: &reconciling.BatchSummary{}}
		cfg := &config.Config{
			BudgetReset: config.BudgetReset{
				DailyCronSchedule:   "0 0 * * *",
				MonthlyCronSchedule: "0 0 1 * *",
				Enabled:             true,
			},
		}
		service := NewBudgetResetService(stub, cfg)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		err := service.Start(ctx)

		assert.NoError(t, err)
		assert.Len(t, service.scheduler.Jobs(), 2)
	})
}
