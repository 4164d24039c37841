package budgeting

import (
	"github.com/vfg2006/budget-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/budget-manager-api/infrastructure/repository"
	"github.com/vfg2006/budget-manager-api/internal/domain"
	"github.com/vfg2006/budget-manager-api/pkg/apiErrors"
)

// Evaluate é a função pura que classifica a situação orçamentária de uma
// marca. O estouro diário tem precedência quando os dois limites foram
// atingidos ao mesmo tempo; o efeito nas campanhas é o mesmo (pausa), apenas a
// classificação difere. Atingir o limite já conta como estouro (>=).
func Evaluate(dailySpend, dailyBudget, monthlySpend, monthlyBudget float64) domain.BudgetVerdict {
	if dailySpend >= dailyBudget {
		return domain.BudgetDailyExceeded
	}

	if monthlySpend >= monthlyBudget {
		return domain.BudgetMonthlyExceeded
	}

	return domain.BudgetOK
}

// EvaluateBrand aplica Evaluate aos totais correntes da marca.
func EvaluateBrand(brand *domain.Brand) domain.BudgetVerdict {
	return Evaluate(brand.DailySpend, brand.DailyBudget, brand.MonthlySpend, brand.MonthlyBudget)
}

type BudgetService interface {
	GetBudgetStatus(brandID string) ([]*domain.BrandBudgetStatus, error)
}

type Service struct {
	conn         postgres.Conn
	brandRepo    repository.BrandRepository
	campaignRepo repository.CampaignRepository
}

func NewService(
	conn postgres.Conn,
	brandRepo repository.BrandRepository,
	campaignRepo repository.CampaignRepository,
) BudgetService {
	return &Service{
		conn:         conn,
		brandRepo:    brandRepo,
		campaignRepo: campaignRepo,
	}
}

// GetBudgetStatus devolve a situação orçamentária das marcas. Com brandID
// vazio, lista todas as marcas ativas.
func (s *Service) GetBudgetStatus(brandID string) ([]*domain.BrandBudgetStatus, error) {
	var brands []*domain.Brand

	if brandID != "" {
		brand, err := s.brandRepo.GetByID(brandID)
		if err != nil {
			return nil, NewBudgetError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Erro ao buscar marca no banco de dados")
		}
		if brand == nil {
			return nil, NewBudgetErrorWithID(ErrBrandNotFound, apiErrors.ErrBrandNotFound, brandID, "Marca não encontrada")
		}
		brands = []*domain.Brand{brand}
	} else {
		var err error
		brands, err = s.brandRepo.List(true)
		if err != nil {
			return nil, NewBudgetError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Erro ao listar marcas no banco de dados")
		}
	}

	statuses := make([]*domain.BrandBudgetStatus, 0, len(brands))

	for _, brand := range brands {
		campaigns, err := s.campaignRepo.ListByBrandID(s.conn, brand.ID)
		if err != nil {
			return nil, NewBudgetErrorWithID(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, brand.ID, "Erro ao listar campanhas da marca")
		}

		active, paused := 0, 0
		for _, campaign := range campaigns {
			if campaign.IsActive {
				active++
			} else {
				paused++
			}
		}

		statuses = append(statuses, &domain.BrandBudgetStatus{
			BrandID:          brand.ID,
			BrandName:        brand.Name,
			DailySpend:       brand.DailySpend,
			DailyBudget:      brand.DailyBudget,
			DailyRemaining:   brand.DailyRemaining(),
			MonthlySpend:     brand.MonthlySpend,
			MonthlyBudget:    brand.MonthlyBudget,
			MonthlyRemaining: brand.MonthlyRemaining(),
			Violation:        EvaluateBrand(brand),
			CampaignsActive:  active,
			CampaignsPaused:  paused,
		})
	}

	return statuses, nil
}
