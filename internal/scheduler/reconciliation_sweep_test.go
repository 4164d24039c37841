package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/budget-manager-api/internal/config"
	"github.com/vfg2006/budget-manager-api/internal/domain"
	"github.com/vfg2006/budget-manager-api/internal/usecases/reconciling"
)

// stubReconciler conta as execuções de cada lote e devolve respostas fixas.
type stubReconciler struct {
	sweepCalls   int
	dailyCalls   int
	monthlyCalls int
	summary      *reconciling.BatchSummary
	err          error
}

func (s *stubReconciler) RunPeriodicSweep(ctx context.Context) (*reconciling.BatchSummary, error) {
	s.sweepCalls++
	return s.summary, s.err
}

func (s *stubReconciler) RunDailyReset(ctx context.Context) (*reconciling.BatchSummary, error) {
	s.dailyCalls++
	return s.summary, s.err
}

func (s *stubReconciler) RunMonthlyReset(ctx context.Context) (*reconciling.BatchSummary, error) {
	s.monthlyCalls++
	return s.summary, s.err
}

func (s *stubReconciler) ForceBrandReset(ctx context.Context, brandID, period string) (*reconciling.BrandResult, error) {
	return nil, s.err
}

func (s *stubReconciler) RefreshCampaignDayparting(ctx context.Context, campaignID string) (*domain.CampaignState, error) {
	return nil, s.err
}

func TestReconciliationSweepService_RunSweep(t *testing.T) {
	t.Run("Deve executar a varredura e guardar o resumo da última execução", func(t *testing.T) {
		stub := &stubReconciler{
			summary: &reconciling.BatchSummary{
				BrandsProcessed:  3,
				CampaignsChanged: 2,
			},
		}
		service := &ReconciliationSweepService{
			scheduler:  gocron.NewScheduler(time.UTC),
			reconciler: stub,
			config:     ReconciliationSweepConfig{Enabled: true, CronSchedule: "*/15 * * * *"},
		}

		err := service.RunSweep(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 1, stub.sweepCalls)

		status := service.GetStatus()
		assert.Equal(t, false, status["running"])
		assert.Equal(t, stub.summary, status["last_run_summary"])
	})

	t.Run("Deve descartar execução sobreposta no mesmo processo", func(t *testing.T) {
		stub := &stubReconciler{summary: &reconciling.BatchSummary{}}
		service := &ReconciliationSweepService{
			scheduler:  gocron.NewScheduler(time.UTC),
			reconciler: stub,
			runRunning: true,
		}

		err := service.RunSweep(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 0, stub.sweepCalls)
	})

	t.Run("Deve propagar erro do reconciliador", func(t *testing.T) {
		stub := &stubReconciler{err: assert.AnError}
		service := &ReconciliationSweepService{
			scheduler:  gocron.NewScheduler(time.UTC),
			reconciler: stub,
		}

		err := service.RunSweep(context.Background())

		assert.Error(t, err)
		assert.Equal(t, 1, stub.sweepCalls)
	})
}

func TestReconciliationSweepService_Start(t *testing.T) {
	t.Run("Deve respeitar a flag de desabilitado sem agendar nada", func(t *testing.T) {
		stub := &stubReconciler{}
		cfg := &config.Config{
			ReconciliationSweep: config.ReconciliationSweep{
				CronSchedule: "*/15 * * * *",
				Enabled:      false,
			},
		}
		service := NewReconciliationSweepService(stub, cfg)

		err := service.Start(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 0, stub.sweepCalls)
		assert.Len(t, service.scheduler.Jobs(), 0)
	})

	t.Run("Deve rejeitar expressão cron inválida", func(t *testing.T) {
		stub := &stubReconciler{}
		cfg := &config.Config{
			ReconciliationSweep: config.ReconciliationSweep{
				CronSchedule: "not-a-cron",
				Enabled:      true,
			},
		}
		service := NewReconciliationSweepService(stub, cfg)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		err := service.Start(ctx)

		assert.Error(t, err)
	})
}
