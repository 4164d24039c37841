package reconciling

import (
	"context"
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/budget-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/budget-manager-api/infrastructure/repository"
	"github.com/vfg2006/budget-manager-api/internal/domain"
	"github.com/vfg2006/budget-manager-api/internal/usecases/budgeting"
	"github.com/vfg2006/budget-manager-api/internal/usecases/dayparting"
	"github.com/vfg2006/budget-manager-api/pkg/apiErrors"
	"github.com/vfg2006/budget-manager-api/pkg/metrics"
)

// Reconcile é a função pura que combina o veredito de orçamento e a janela de
// dayparting nas flags derivadas da campanha. A pausa por orçamento sempre
// domina: basta uma das duas flags para a campanha ficar inativa. Reexecutar
// com as mesmas entradas produz o mesmo estado.
func Reconcile(campaign *domain.Campaign, verdict domain.BudgetVerdict, inWindow bool) domain.CampaignState {
	pausedByBudget := verdict.Exceeded()
	pausedByDayparting := !inWindow

	return domain.CampaignState{
		CampaignID:           campaign.ID,
		IsPausedByBudget:     pausedByBudget,
		IsPausedByDayparting: pausedByDayparting,
		IsActive:             !pausedByBudget && !pausedByDayparting,
	}
}

// resetMode indica quais totais da marca são zerados antes da reconciliação.
type resetMode int

const (
	resetNone resetMode = iota
	resetDaily
	resetMonthly
)

// ResetPeriodDaily e afins são os períodos aceitos pelo reset forçado por marca.
const (
	ResetPeriodDaily   = "daily"
	ResetPeriodMonthly = "monthly"
	ResetPeriodBoth    = "both"
)

// BrandResult resume a reconciliação de uma marca.
type BrandResult struct {
	BrandID          string               `json:"brand_id"`
	Verdict          domain.BudgetVerdict `json:"verdict"`
	DailySpend       float64              `json:"daily_spend"`
	MonthlySpend     float64              `json:"monthly_spend"`
	CampaignsTotal   int                  `json:"campaigns_total"`
	CampaignsChanged int                  `json:"campaigns_changed"`
}

// BatchSummary resume uma varredura ou um reset sobre todas as marcas. Falhas
// por marca não interrompem o lote: as marcas são unidades independentes de
// consistência e as restantes seguem sendo processadas.
type BatchSummary struct {
	BrandsProcessed  int       `json:"brands_processed"`
	BrandsFailed     int       `json:"brands_failed"`
	CampaignsChanged int       `json:"campaigns_changed"`
	FailedBrandIDs   []string  `json:"failed_brand_ids,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
}

type Reconciler interface {
	RunPeriodicSweep(ctx context.Context) (*BatchSummary, error)
	RunDailyReset(ctx context.Context) (*BatchSummary, error)
	RunMonthlyReset(ctx context.Context) (*BatchSummary, error)
	ForceBrandReset(ctx context.Context, brandID, period string) (*BrandResult, error)
	RefreshCampaignDayparting(ctx context.Context, campaignID string) (*domain.CampaignState, error)
}

type Service struct {
	conn         postgres.Conn
	brandRepo    repository.BrandRepository
	campaignRepo repository.CampaignRepository
	scheduleRepo repository.DaypartingScheduleRepository
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewService(
	conn postgres.Conn,
	brandRepo repository.BrandRepository,
	campaignRepo repository.CampaignRepository,
	scheduleRepo repository.DaypartingScheduleRepository,
	m *metrics.Metrics,
) *Service {
	return &Service{
		conn:         conn,
		brandRepo:    brandRepo,
		campaignRepo: campaignRepo,
		scheduleRepo: scheduleRepo,
		metrics:      m,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// RunPeriodicSweep reavalia orçamento e dayparting de todas as marcas com os
// totais correntes. Idempotente: sem gasto entre duas execuções, a segunda não
// altera nada.
func (s *Service) RunPeriodicSweep(ctx context.Context) (*BatchSummary, error) {
	return s.runBatch(ctx, "sweep", resetNone)
}

// RunDailyReset zera o gasto diário de todas as marcas e reconcilia as
// campanhas. Depois do reset, apenas o limite mensal ainda pode manter uma
// violação de orçamento.
func (s *Service) RunDailyReset(ctx context.Context) (*BatchSummary, error) {
	return s.runBatch(ctx, "daily_reset", resetDaily)
}

// RunMonthlyReset zera os dois totais de todas as marcas. O veredito resultante
// é sempre OK, então toda pausa por orçamento é liberada e somente o dayparting
// passa a governar a ativação.
func (s *Service) RunMonthlyReset(ctx context.Context) (*BatchSummary, error) {
	return s.runBatch(ctx, "monthly_reset", resetMonthly)
}

func (s *Service) runBatch(ctx context.Context, job string, mode resetMode) (*BatchSummary, error) {
	summary := &BatchSummary{StartedAt: s.now()}

	brandIDs, err := s.brandRepo.ListIDs(false)
	if err != nil {
		s.observeBatch(job, "error", summary)
		return nil, NewReconcileError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Erro ao listar marcas para o lote")
	}

	dailyViolations, monthlyViolations := 0, 0

	for _, brandID := range brandIDs {
		result, err := s.reconcileBrandWithRetry(ctx, brandID, mode)
		if err != nil {
			summary.BrandsFailed++
			summary.FailedBrandIDs = append(summary.FailedBrandIDs, brandID)

			logrus.WithError(err).WithFields(logrus.Fields{
				"job":      job,
				"brand_id": brandID,
			}).Error("Falha ao reconciliar marca, seguindo para a próxima")
			continue
		}

		summary.BrandsProcessed++
		summary.CampaignsChanged += result.CampaignsChanged

		switch result.Verdict {
		case domain.BudgetDailyExceeded:
			dailyViolations++
		case domain.BudgetMonthlyExceeded:
			monthlyViolations++
		}
	}

	summary.FinishedAt = s.now()
	s.observeViolations(dailyViolations, monthlyViolations)

	status := "ok"
	if summary.BrandsFailed > 0 {
		status = "partial_failure"
	}
	s.observeBatch(job, status, summary)

	logrus.WithFields(logrus.Fields{
		"job":               job,
		"brands_processed":  summary.BrandsProcessed,
		"brands_failed":     summary.BrandsFailed,
		"campaigns_changed": summary.CampaignsChanged,
		"duration_ms":       summary.FinishedAt.Sub(summary.StartedAt).Milliseconds(),
	}).Info("Lote de reconciliação concluído")

	return summary, nil
}

// observeViolations atualiza o retrato de marcas em violação. Só os lotes
// alimentam o gauge, porque só eles enxergam todas as marcas de uma vez.
func (s *Service) observeViolations(daily, monthly int) {
	if s.metrics == nil {
		return
	}

	s.metrics.BrandsInViolation.WithLabelValues("daily").Set(float64(daily))
	s.metrics.BrandsInViolation.WithLabelValues("monthly").Set(float64(monthly))
}

func (s *Service) observeBatch(job, status string, summary *BatchSummary) {
	if s.metrics == nil {
		return
	}

	s.metrics.ReconciliationRuns.WithLabelValues(job, status).Inc()
	if !summary.FinishedAt.IsZero() {
		s.metrics.ReconciliationDuration.WithLabelValues(job).
			Observe(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
	}
}

// reconcileBrandWithRetry repete uma única vez quando a transação perde a
// disputa pela linha da marca (falha de serialização ou deadlock).
func (s *Service) reconcileBrandWithRetry(ctx context.Context, brandID string, mode resetMode) (*BrandResult, error) {
	result, err := s.reconcileBrand(ctx, brandID, mode)
	if err != nil && repository.IsConcurrencyConflict(err) {
		logrus.WithField("brand_id", brandID).Warn("Conflito de concorrência na marca, repetindo a operação")
		return s.reconcileBrand(ctx, brandID, mode)
	}
	return result, err
}

// reconcileBrand executa um passo completo de avaliação e escrita para uma
// marca dentro de uma única transação, com a linha da marca travada do início
// ao fim. Nenhum leitor concorrente observa totais novos sem as flags novas.
func (s *Service) reconcileBrand(ctx context.Context, brandID string, mode resetMode) (*BrandResult, error) {
	result := &BrandResult{BrandID: brandID}

	err := s.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		brand, err := s.brandRepo.GetForUpdate(tx, brandID)
		if err != nil {
			return err
		}
		if brand == nil {
			return NewReconcileErrorWithID(ErrBrandNotFound, apiErrors.ErrBrandNotFound, brandID, "Marca não encontrada")
		}

		switch mode {
		case resetDaily:
			if brand.DailySpend != 0 {
				brand.DailySpend = 0
				if err := s.brandRepo.UpdateSpendTotals(tx, brand); err != nil {
					return err
				}
			}
		case resetMonthly:
			if brand.DailySpend != 0 || brand.MonthlySpend != 0 {
				brand.DailySpend = 0
				brand.MonthlySpend = 0
				if err := s.brandRepo.UpdateSpendTotals(tx, brand); err != nil {
					return err
				}
			}
		}

		verdict := budgeting.EvaluateBrand(brand)

		campaigns, err := s.campaignRepo.ListByBrandID(tx, brandID)
		if err != nil {
			return err
		}

		schedules, err := s.scheduleRepo.ListByBrandID(tx, brandID)
		if err != nil {
			return err
		}

		now := s.now()
		changed := 0

		for _, campaign := range campaigns {
			inWindow := dayparting.InWindow(schedules[campaign.ID], now)
			state := Reconcile(campaign, verdict, inWindow)

			wasActive := campaign.IsActive
			if !campaign.ApplyState(state) {
				continue
			}

			if err := s.campaignRepo.UpdateFlags(tx, campaign); err != nil {
				return err
			}
			changed++
			s.observeTransition(wasActive, campaign)
		}

		result.Verdict = verdict
		result.DailySpend = brand.DailySpend
		result.MonthlySpend = brand.MonthlySpend
		result.CampaignsTotal = len(campaigns)
		result.CampaignsChanged = changed

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Service) observeTransition(wasActive bool, campaign *domain.Campaign) {
	if s.metrics == nil || wasActive == campaign.IsActive {
		return
	}

	direction := "paused"
	reason := "dayparting"
	if campaign.IsActive {
		direction = "activated"
		reason = "reconciliation"
	} else if campaign.IsPausedByBudget {
		reason = "budget"
	}

	s.metrics.CampaignStateTransitions.WithLabelValues(reason, direction).Inc()
}

// ForceBrandReset zera os contadores de uma única marca sob demanda. O período
// "both" equivale ao mensal, que já zera os dois totais; é aceito por
// conveniência do operador.
func (s *Service) ForceBrandReset(ctx context.Context, brandID, period string) (*BrandResult, error) {
	var mode resetMode

	switch period {
	case ResetPeriodDaily:
		mode = resetDaily
	case ResetPeriodMonthly, ResetPeriodBoth:
		mode = resetMonthly
	default:
		return nil, NewReconcileError(ErrInvalidResetPeriod, apiErrors.ErrInvalidRequest, "Período de reset inválido. Valores aceitos: daily, monthly, both")
	}

	result, err := s.reconcileBrandWithRetry(ctx, brandID, mode)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"brand_id":          brandID,
		"period":            period,
		"campaigns_changed": result.CampaignsChanged,
	}).Info("Reset forçado de marca concluído")

	return result, nil
}

// RefreshCampaignDayparting reavalia uma única campanha agora. O orçamento da
// marca também é reavaliado dentro da mesma transação: a campanha nunca é
// reativada enquanto a marca segue estourada.
func (s *Service) RefreshCampaignDayparting(ctx context.Context, campaignID string) (*domain.CampaignState, error) {
	campaign, err := s.campaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, NewReconcileError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Erro ao buscar campanha no banco de dados")
	}
	if campaign == nil {
		return nil, NewReconcileError(ErrCampaignNotFound, apiErrors.ErrCampaignNotFound, "Campanha não encontrada")
	}

	var state domain.CampaignState

	err = s.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		brand, err := s.brandRepo.GetForUpdate(tx, campaign.BrandID)
		if err != nil {
			return err
		}
		if brand == nil {
			return NewReconcileErrorWithID(ErrBrandNotFound, apiErrors.ErrBrandNotFound, campaign.BrandID, "Marca não encontrada")
		}

		current, err := s.campaignRepo.GetByID(campaignID)
		if err != nil {
			return err
		}
		if current == nil {
			return NewReconcileError(ErrCampaignNotFound, apiErrors.ErrCampaignNotFound, "Campanha não encontrada")
		}

		schedules, err := s.scheduleRepo.ListByCampaignID(tx, campaignID)
		if err != nil {
			return err
		}

		verdict := budgeting.EvaluateBrand(brand)
		inWindow := dayparting.InWindow(schedules, s.now())

		state = Reconcile(current, verdict, inWindow)

		wasActive := current.IsActive
		if current.ApplyState(state) {
			if err := s.campaignRepo.UpdateFlags(tx, current); err != nil {
				return err
			}
			s.observeTransition(wasActive, current)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &state, nil
}
