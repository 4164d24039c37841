package spending

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/budget-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/budget-manager-api/infrastructure/repository"
	"github.com/vfg2006/budget-manager-api/internal/domain"
	"github.com/vfg2006/budget-manager-api/internal/usecases/budgeting"
	"github.com/vfg2006/budget-manager-api/internal/usecases/dayparting"
	"github.com/vfg2006/budget-manager-api/internal/usecases/reconciling"
	"github.com/vfg2006/budget-manager-api/pkg/apiErrors"
	"github.com/vfg2006/budget-manager-api/pkg/metrics"
	"github.com/vfg2006/budget-manager-api/pkg/utils"
)

type Ledger interface {
	RecordSpend(ctx context.Context, req *domain.RecordSpendRequest) (*domain.SpendOutcome, error)
}

type Service struct {
	conn         postgres.Conn
	brandRepo    repository.BrandRepository
	campaignRepo repository.CampaignRepository
	spendRepo    repository.SpendRepository
	scheduleRepo repository.DaypartingScheduleRepository
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewService(
	conn postgres.Conn,
	brandRepo repository.BrandRepository,
	campaignRepo repository.CampaignRepository,
	spendRepo repository.SpendRepository,
	scheduleRepo repository.DaypartingScheduleRepository,
	m *metrics.Metrics,
) *Service {
	return &Service{
		conn:         conn,
		brandRepo:    brandRepo,
		campaignRepo: campaignRepo,
		spendRepo:    spendRepo,
		scheduleRepo: scheduleRepo,
		metrics:      m,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// RecordSpend registra um gasto e mantém os agregados da marca como um único
// passo atômico: inserir o Spend, incrementar os totais diário e mensal,
// reavaliar o orçamento e reconciliar todas as campanhas da marca acontecem na
// mesma transação, com a linha da marca travada. Nenhum leitor observa o novo
// total sem a consequência dele nas flags de pausa.
func (s *Service) RecordSpend(ctx context.Context, req *domain.RecordSpendRequest) (*domain.SpendOutcome, error) {
	outcome, err := s.recordSpend(ctx, req)
	if err != nil && repository.IsConcurrencyConflict(err) {
		logrus.WithField("campaign_id", req.CampaignID).Warn("Conflito de concorrência ao registrar gasto, repetindo a operação")
		outcome, err = s.recordSpend(ctx, req)
	}

	s.observeSpend(req.Amount, err)

	return outcome, err
}

func (s *Service) recordSpend(ctx context.Context, req *domain.RecordSpendRequest) (*domain.SpendOutcome, error) {
	amount := utils.RoundWithTwoDecimalPlace(req.Amount)
	if amount <= 0 {
		return nil, NewSpendError(ErrInvalidAmount, apiErrors.ErrInvalidAmount, "O valor do gasto deve ser maior que zero")
	}

	campaign, err := s.campaignRepo.GetByID(req.CampaignID)
	if err != nil {
		return nil, NewSpendError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Erro ao buscar campanha no banco de dados")
	}
	if campaign == nil {
		return nil, NewSpendErrorWithID(ErrCampaignNotFound, apiErrors.ErrCampaignNotFound, req.CampaignID, "Campanha não encontrada")
	}

	spentAt := s.now()
	if req.SpentAt != nil {
		spentAt = req.SpentAt.UTC()
	}

	var outcome *domain.SpendOutcome

	err = s.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		brand, err := s.brandRepo.GetForUpdate(tx, campaign.BrandID)
		if err != nil {
			return err
		}
		if brand == nil {
			return NewSpendError(ErrBrandNotFound, apiErrors.ErrBrandNotFound, "Marca da campanha não encontrada")
		}
		if !brand.IsActive {
			return NewSpendErrorWithID(ErrInactiveBrand, apiErrors.ErrInactiveBrand, req.CampaignID, "Marca desativada, gasto rejeitado")
		}

		spend := &domain.Spend{
			ID:         uuid.New().String(),
			CampaignID: campaign.ID,
			Amount:     amount,
			SpentAt:    spentAt,
		}

		if err := s.spendRepo.Insert(tx, spend); err != nil {
			return err
		}

		brand.DailySpend = utils.RoundWithTwoDecimalPlace(brand.DailySpend + amount)
		brand.MonthlySpend = utils.RoundWithTwoDecimalPlace(brand.MonthlySpend + amount)

		if err := s.brandRepo.UpdateSpendTotals(tx, brand); err != nil {
			return err
		}

		verdict := budgeting.EvaluateBrand(brand)

		campaigns, err := s.campaignRepo.ListByBrandID(tx, brand.ID)
		if err != nil {
			return err
		}

		schedules, err := s.scheduleRepo.ListByBrandID(tx, brand.ID)
		if err != nil {
			return err
		}

		now := s.now()
		states := make([]domain.CampaignState, 0, len(campaigns))

		for _, sibling := range campaigns {
			inWindow := dayparting.InWindow(schedules[sibling.ID], now)
			state := reconciling.Reconcile(sibling, verdict, inWindow)

			if sibling.ApplyState(state) {
				if err := s.campaignRepo.UpdateFlags(tx, sibling); err != nil {
					return err
				}
			}

			states = append(states, state)
		}

		outcome = &domain.SpendOutcome{
			SpendID:      spend.ID,
			BrandID:      brand.ID,
			DailySpend:   brand.DailySpend,
			MonthlySpend: brand.MonthlySpend,
			Verdict:      verdict,
			Campaigns:    states,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"spend_id":      outcome.SpendID,
		"campaign_id":   campaign.ID,
		"brand_id":      outcome.BrandID,
		"amount":        amount,
		"daily_spend":   outcome.DailySpend,
		"monthly_spend": outcome.MonthlySpend,
		"verdict":       outcome.Verdict,
	}).Info("Gasto registrado")

	return outcome, nil
}

func (s *Service) observeSpend(amount float64, err error) {
	if s.metrics == nil {
		return
	}

	status := "recorded"
	if err != nil {
		status = "rejected"
	} else {
		s.metrics.SpendAmount.Observe(amount)
	}

	s.metrics.SpendEvents.WithLabelValues(status).Inc()
}
