package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/budget-manager-api/internal/config"
	"github.com/vfg2006/budget-manager-api/internal/usecases/reconciling"
)

type BudgetResetConfig struct {
	DailyCronSchedule   string
	MonthlyCronSchedule string
	Enabled             bool
}

// BudgetResetService dispara os resets diário e mensal dos contadores de gasto.
// No primeiro dia do mês os dois crons disparam próximos da meia-noite; a ordem
// não importa porque o reset mensal zera os dois totais e ambos são
// idempotentes.
type BudgetResetService struct {
	scheduler              *gocron.Scheduler
	reconciler             reconciling.Reconciler
	config                 BudgetResetConfig
	resetRunning           bool
	resetMutex             sync.Mutex
	lastDailyCompletedAt   time.Time
	lastMonthlyCompletedAt time.Time
}

func NewBudgetResetService(
	reconciler reconciling.Reconciler,
	cfg *config.Config,
) *BudgetResetService {
	resetConfig := BudgetResetConfig{
		DailyCronSchedule:   cfg.BudgetReset.DailyCronSchedule,   // Default: meia-noite UTC
		MonthlyCronSchedule: cfg.BudgetReset.MonthlyCronSchedule, // Default: dia 1 à meia-noite UTC
		Enabled:             cfg.BudgetReset.Enabled,
	}

	scheduler := gocron.NewScheduler(time.UTC)

	logrus.WithFields(logrus.Fields{
		"daily_cron":   resetConfig.DailyCronSchedule,
		"monthly_cron": resetConfig.MonthlyCronSchedule,
	}).Info("Configuração do agendador de resets de orçamento carregada")

	return &BudgetResetService{
		scheduler:  scheduler,
		reconciler: reconciler,
		config:     resetConfig,
	}
}

func (s *BudgetResetService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("Crons de reset de orçamento desabilitadas por configuração")
		return nil
	}

	logrus.WithFields(logrus.Fields{
		"daily_cron":   s.config.DailyCronSchedule,
		"monthly_cron": s.config.MonthlyCronSchedule,
	}).Info("Iniciando crons de reset de orçamento")

	_, err := s.scheduler.Cron(s.config.DailyCronSchedule).Do(func() {
		if err := s.RunDailyReset(ctx); err != nil {
			logrus.WithError(err).Error("Erro no reset diário de orçamento")
		}
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar reset diário: %w", err)
	}

	_, err = s.scheduler.Cron(s.config.MonthlyCronSchedule).Do(func() {
		if err := s.RunMonthlyReset(ctx); err != nil {
			logrus.WithError(err).Error("Erro no reset mensal de orçamento")
		}
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar reset mensal: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando crons de reset de orçamento")
		s.scheduler.Stop()
	}()

	return nil
}

// RunDailyReset zera o gasto diário de todas as marcas e reconcilia.
func (s *BudgetResetService) RunDailyReset(ctx context.Context) error {
	return s.runReset(ctx, "daily", func(ctx context.Context) (*reconciling.BatchSummary, error) {
		return s.reconciler.RunDailyReset(ctx)
	})
}

// RunMonthlyReset zera os dois totais de todas as marcas e reconcilia.
func (s *BudgetResetService) RunMonthlyReset(ctx context.Context) error {
	return s.runReset(ctx, "monthly", func(ctx context.Context) (*reconciling.BatchSummary, error) {
		return s.reconciler.RunMonthlyReset(ctx)
	})
}

func (s *BudgetResetService) runReset(ctx context.Context, period string, run func(context.Context) (*reconciling.BatchSummary, error)) error {
	s.resetMutex.Lock()
	if s.resetRunning {
		s.resetMutex.Unlock()
		logrus.WithField("period", period).Warn("Reset de orçamento já está em execução")
		return nil
	}
	s.resetRunning = true
	s.resetMutex.Unlock()

	defer func() {
		s.resetMutex.Lock()
		s.resetRunning = false
		now := time.Now()
		if period == "daily" {
			s.lastDailyCompletedAt = now
		} else {
			s.lastMonthlyCompletedAt = now
		}
		s.resetMutex.Unlock()
	}()

	logrus.WithField("period", period).Info("Iniciando reset de orçamento")

	summary, err := run(ctx)
	if err != nil {
		logrus.WithError(err).WithField("period", period).Error("Erro ao executar reset de orçamento")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"period":            period,
		"brands_processed":  summary.BrandsProcessed,
		"brands_failed":     summary.BrandsFailed,
		"campaigns_changed": summary.CampaignsChanged,
	}).Info("Reset de orçamento concluído")

	return nil
}

// TriggerManualDailyReset inicia manualmente um reset diário
func (s *BudgetResetService) TriggerManualDailyReset() {
	logrus.Info("Iniciando reset diário manual")
	go func() {
		if err := s.RunDailyReset(context.Background()); err != nil {
			logrus.WithError(err).Error("Erro no reset diário manual")
		}
	}()
}

// TriggerManualMonthlyReset inicia manualmente um reset mensal
func (s *BudgetResetService) TriggerManualMonthlyReset() {
	logrus.Info("Iniciando reset mensal manual")
	go func() {
		if err := s.RunMonthlyReset(context.Background()); err != nil {
			logrus.WithError(err).Error("Erro no reset mensal manual")
		}
	}()
}

// GetStatus retorna o status atual do agendador
func (s *BudgetResetService) GetStatus() map[string]any {
	s.resetMutex.Lock()
	defer s.resetMutex.Unlock()

	return map[string]any{
		"enabled":                   s.config.Enabled,
		"daily_cron":                s.config.DailyCronSchedule,
		"monthly_cron":              s.config.MonthlyCronSchedule,
		"running":                   s.resetRunning,
		"last_daily_completed_at":   s.lastDailyCompletedAt,
		"last_monthly_completed_at": s.lastMonthlyCompletedAt,
	}
}
