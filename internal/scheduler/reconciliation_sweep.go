// Package scheduler contém os serviços de agendamento da reconciliação periódica
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

type ReconciliationSweepConfig struct {
	CronSchedule string
	Enabled      bool
}

// ReconciliationSweepService dispara a varredura periódica que reavalia
// orçamento e dayparting de todas as marcas. O gatilho é local (gocron), mas a
// operação em si é idempotente: entregas repetidas do mesmo período são
// inofensivas.
type ReconciliationSweepService struct {
	scheduler          *gocron.Scheduler
	reconciler         reconciling.Reconciler
	config             ReconciliationSweepConfig
	runRunning         bool
	runMutex           sync.Mutex
	lastRunStartedAt   time.Time
	lastRunCompletedAt time.Time
	lastRunSummary     *reconciling.BatchSummary
}

func NewReconciliationSweepService(
	reconciler reconciling.Reconciler,
	cfg *config.Config,
) *ReconciliationSweepService {
	sweepConfig := ReconciliationSweepConfig{
		CronSchedule: cfg.ReconciliationSweep.CronSchedule, // Default: a cada 15 minutos
		Enabled:      cfg.ReconciliationSweep.Enabled,
	}

	scheduler := gocron.NewScheduler(time.UTC)

	logrus.WithFields(logrus.Fields{
		"cron_schedule": sweepConfig.CronSchedule,
	}).Info("Configuração do agendador da varredura de reconciliação carregada")

	return &ReconciliationSweepService{
		scheduler:  scheduler,
		reconciler: reconciler,
		config:     sweepConfig,
	}
}

func (s *ReconciliationSweepService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("Cron da varredura de reconciliação desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando cron da varredura de reconciliação")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		if err := s.RunSweep(ctx); err != nil {
			logrus.WithError(err).Error("Erro na varredura de reconciliação")
		}
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar varredura de reconciliação: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando cron da varredura de reconciliação")
		s.scheduler.Stop()
	}()

	return nil
}

// RunSweep executa uma varredura completa. Execuções sobrepostas no mesmo
// processo são descartadas; entre processos, o lock por marca no banco garante
// a serialização.
func (s *ReconciliationSweepService) RunSweep(ctx context.Context) error {
	s.runMutex.Lock()
	if s.runRunning {
		s.runMutex.Unlock()
		logrus.Warn("Varredura de reconciliação já está em execução")
		return nil
	}
	s.runRunning = true
	s.lastRunStartedAt = time.Now()
	s.runMutex.Unlock()

	defer func() {
		s.runMutex.Lock()
		s.runRunning = false
		s.lastRunCompletedAt = time.Now()
		s.runMutex.Unlock()
	}()

	logrus.Info("Iniciando varredura de reconciliação")

	summary, err := s.reconciler.RunPeriodicSweep(ctx)
	if err != nil {
		logrus.WithError(err).Error("Erro ao executar varredura de reconciliação")
		return err
	}

	s.runMutex.Lock()
	s.lastRunSummary = summary
	s.runMutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"brands_processed":  summary.BrandsProcessed,
		"brands_failed":     summary.BrandsFailed,
		"campaigns_changed": summary.CampaignsChanged,
	}).Info("Varredura de reconciliação concluída")

	return nil
}

// TriggerManualRun inicia manualmente uma varredura de reconciliação
func (s *ReconciliationSweepService) TriggerManualRun() {
	s.runMutex.Lock()
	if s.runRunning {
		s.runMutex.Unlock()
		logrus.Info("Varredura de reconciliação já em andamento, ignorando solicitação manual")
		return
	}
	s.runMutex.Unlock()

	logrus.Info("Iniciando varredura de reconciliação manual")
	go func() {
		if err := s.RunSweep(context.Background()); err != nil {
			logrus.WithError(err).Error("Erro na varredura de reconciliação manual")
		}
	}()
}

// GetStatus retorna o status atual do agendador
func (s *ReconciliationSweepService) GetStatus() map[string]any {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	status := map[string]any{
		"enabled":               s.config.Enabled,
		"cron":                  s.config.CronSchedule,
		"running":               s.runRunning,
		"last_run_started_at":   s.lastRunStartedAt,
		"last_run_completed_at": s.lastRunCompletedAt,
	}

	if s.lastRunSummary != nil {
		status["last_run_summary"] = s.lastRunSummary
	}

	return status
}
