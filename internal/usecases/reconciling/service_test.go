package reconciling

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/budget-manager-api/infrastructure/repository/mocks"
	"github.com/vfg2006/budget-manager-api/internal/domain"
	"go.uber.org/mock/gomock"
)

// stubConn entrega a transação direto para fn, sem banco de dados. Os
// repositórios são mocks, então o *sql.Tx nunca é dereferenciado.
type stubConn struct{}

func (stubConn) Exec(query string, args ...interface{}) (sql.Result, error) { return nil, nil }
func (stubConn) Query(query string, args ...interface{}) (*sql.Rows, error) { return nil, nil }
func (stubConn) QueryRow(query string, args ...interface{}) *sql.Row        { return nil }
func (stubConn) Begin(ctx context.Context) (*sql.Tx, error)                 { return nil, nil }
func (stubConn) Close() error                                               { return nil }
func (stubConn) Ping(ctx context.Context) error                             { return nil }

func (stubConn) RunInTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	return fn(nil)
}

// Segunda-feira, 15 de janeiro de 2024, 10:00 UTC
var referenceTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func newTestService(brandRepo *mocks.MockBrandRepository, campaignRepo *mocks.MockCampaignRepository, scheduleRepo *mocks.MockDaypartingScheduleRepository) *Service {
	return &Service{
		conn:         stubConn{},
		brandRepo:    brandRepo,
		campaignRepo: campaignRepo,
		scheduleRepo: scheduleRepo,
		now:          func() time.Time { return referenceTime },
	}
}

func TestReconcile(t *testing.T) {
	campaign := &domain.Campaign{ID: "CMP001"}

	tests := []struct {
		name     string
		verdict  domain.BudgetVerdict
		inWindow bool
		expected domain.CampaignState
	}{
		{
			name:     "Deve ativar a campanha quando o orçamento está OK e ela está na janela",
			verdict:  domain.BudgetOK,
			inWindow: true,
			expected: domain.CampaignState{CampaignID: "CMP001", IsActive: true},
		},
		{
			name:     "Deve pausar por orçamento quando o limite diário estourou",
			verdict:  domain.BudgetDailyExceeded,
			inWindow: true,
			expected: domain.CampaignState{CampaignID: "CMP001", IsPausedByBudget: true},
		},
		{
			name:     "Deve pausar por orçamento quando o limite mensal estourou",
			verdict:  domain.BudgetMonthlyExceeded,
			inWindow: true,
			expected: domain.CampaignState{CampaignID: "CMP001", IsPausedByBudget: true},
		},
		{
			name:     "Deve pausar por dayparting quando está fora da janela",
			verdict:  domain.BudgetOK,
			inWindow: false,
			expected: domain.CampaignState{CampaignID: "CMP001", IsPausedByDayparting: true},
		},
		{
			name:     "Deve manter as duas pausas quando orçamento e janela falham juntos",
			verdict:  domain.BudgetDailyExceeded,
			inWindow: false,
			expected: domain.CampaignState{CampaignID: "CMP001", IsPausedByBudget: true, IsPausedByDayparting: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Reconcile(campaign, tt.verdict, tt.inWindow)
			assert.Equal(t, tt.expected, result)

			// A campanha só fica ativa sem nenhuma pausa
			assert.Equal(t, !result.IsPausedByBudget && !result.IsPausedByDayparting, result.IsActive)
		})
	}
}

func TestService_RunDailyReset(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockBrandRepo := mocks.NewMockBrandRepository(ctrl)
	mockCampaignRepo := mocks.NewMockCampaignRepository(ctrl)
	mockScheduleRepo := mocks.NewMockDaypartingScheduleRepository(ctrl)

	service := newTestService(mockBrandRepo, mockCampaignRepo, mockScheduleRepo)

	t.Run("Deve zerar só o gasto diário e manter a pausa por violação mensal", func(t *testing.T) {
		brand := &domain.Brand{
			ID:            "BRD001",
			DailyBudget:   100.0,
			DailySpend:    150.0,
			MonthlyBudget: 1000.0,
			MonthlySpend:  1200.0,
			IsActive:      true,
		}
		pausedCampaign := &domain.Campaign{
			ID:               "CMP001",
			BrandID:          "BRD001",
			IsActive:         false,
			IsPausedByBudget: true,
		}

		mockBrandRepo.EXPECT().ListIDs(false).Return([]string{"BRD001"}, nil)
		mockBrandRepo.EXPECT().GetForUpdate(gomock.Any(), "BRD001").Return(brand, nil)
		mockBrandRepo.EXPECT().UpdateSpendTotals(gomock.Any(), brand).DoAndReturn(
			func(_ interface{}, b *domain.Brand) error {
				assert.Equal(t, 0.0, b.DailySpend)
				assert.Equal(t, 1200.0, b.MonthlySpend)
				return nil
			})
		mockCampaignRepo.EXPECT().ListByBrandID(gomock.Any(), "BRD001").Return([]*domain.Campaign{pausedCampaign}, nil)
		mockScheduleRepo.EXPECT().ListByBrandID(gomock.Any(), "BRD001").Return(nil, nil)
		// O limite mensal segue estourado: a campanha permanece pausada e
		// nenhuma flag é escrita

		summary, err := service.RunDailyReset(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 1, summary.BrandsProcessed)
		assert.Equal(t, 0, summary.BrandsFailed)
		assert.Equal(t, 0, summary.CampaignsChanged)
		assert.False(t, pausedCampaign.IsActive)
		assert.True(t, pausedCampaign.IsPausedByBudget)
	})
}

func TestService_RunMonthlyReset(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockBrandRepo := mocks.NewMockBrandRepository(ctrl)
	mockCampaignRepo := mocks.NewMockCampaignRepository(ctrl)
	mockScheduleRepo := mocks.NewMockDaypartingScheduleRepository(ctrl)

	service := newTestService(mockBrandRepo, mockCampaignRepo, mockScheduleRepo)

	t.Run("Deve zerar os dois totais e reativar campanhas pausadas por orçamento", func(t *testing.T) {
		brand := &domain.Brand{
			ID:            "BRD001",
			DailyBudget:   100.0,
			DailySpend:    150.0,
			MonthlyBudget: 1000.0,
			MonthlySpend:  1200.0,
			IsActive:      true,
		}
		pausedCampaign := &domain.Campaign{
			ID:               "CMP001",
			BrandID:          "BRD001",
			IsActive:         false,
			IsPausedByBudget: true,
		}

		mockBrandRepo.EXPECT().ListIDs(false).Return([]string{"BRD001"}, nil)
		mockBrandRepo.EXPECT().GetForUpdate(gomock.Any(), "BRD001").Return(brand, nil)
		mockBrandRepo.EXPECT().UpdateSpendTotals(gomock.Any(), brand).DoAndReturn(
			func(_ interface{}, b *domain.Brand) error {
				assert.Equal(t, 0.0, b.DailySpend)
				assert.Equal(t, 0.0, b.MonthlySpend)
				return nil
			})
		mockCampaignRepo.EXPECT().ListByBrandID(gomock.Any(), "BRD001").Return([]*domain.Campaign{pausedCampaign}, nil)
		mockScheduleRepo.EXPECT().ListByBrandID(gomock.Any(), "BRD001").Return(nil, nil)
		mockCampaignRepo.EXPECT().UpdateFlags(gomock.Any(), pausedCampaign).Return(nil)

		summary, err := service.RunMonthlyReset(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 1, summary.BrandsProcessed)
		assert.Equal(t, 1, summary.CampaignsChanged)
		assert.True(t, pausedCampaign.IsActive)
		assert.False(t, pausedCampaign.IsPausedByBudget)
	})
}

func TestService_RunPeriodicSweep(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockBrandRepo := mocks.NewMockBrandRepository(ctrl)
	mockCampaignRepo := mocks.NewMockCampaignRepository(ctrl)
	mockScheduleRepo := mocks.NewMockDaypartingScheduleRepository(ctrl)

	service := newTestService(mockBrandRepo, mockCampaignRepo, mockScheduleRepo)

	t.Run("Deve ser idempotente quando nada mudou desde a última varredura", func(t *testing.T) {
		brand := &domain.Brand{
			ID:            "BRD001",
			DailyBudget:   100.0,
			DailySpend:    50.0,
			MonthlyBudget: 1000.0,
			MonthlySpend:  500.0,
			IsActive:      true,
		}
		activeCampaign := &domain.Campaign{ID: "CMP001", BrandID: "BRD001", IsActive: true}

		// Duas varreduras seguidas: nenhuma escreve flags nem totais
		mockBrandRepo.EXPECT().ListIDs(false).Return([]string{"BRD001"}, nil).Times(2)
		mockBrandRepo.EXPECT().GetForUpdate(gomock.Any(), "BRD001").Return(brand, nil).Times(2)
		mockCampaignRepo.EXPECT().ListByBrandID(gomock.Any(), "BRD001").Return([]*domain.Campaign{activeCampaign}, nil).Times(2)
		mockScheduleRepo.EXPECT().ListByBrandID(gomock.Any(), "BRD001").Return(nil, nil).Times(2)

		first, err := service.RunPeriodicSweep(context.Background())
		assert.NoError(t, err)

		second, err := service.RunPeriodicSweep(context.Background())
		assert.NoError(t, err)

		assert.Equal(t, 0, first.CampaignsChanged)
		assert.Equal(t, 0, second.CampaignsChanged)
	})

	t.Run("Deve pausar por dayparting campanha fora da janela", func(t *testing.T) {
		brand := &domain.Brand{
			ID:            "BRD002",
			DailyBudget:   100.0,
			MonthlyBudget: 1000.0,
			IsActive:      true,
		}
		campaign := &domain.Campaign{ID: "CMP002", BrandID: "BRD002", IsActive: true}

		// Janela de terça-feira: a varredura roda na segunda, fora da janela
		schedules := map[string][]*domain.DaypartingSchedule{
			"CMP002": {
				{
					CampaignID: "CMP002",
					DayOfWeek:  domain.Tuesday,
					StartTime:  domain.NewTimeOfDay(9, 0, 0),
					EndTime:    domain.NewTimeOfDay(17, 0, 0),
					IsActive:   true,
				},
			},
		}

		mockBrandRepo.EXPECT().ListIDs(false).Return([]string{"BRD002"}, nil)
		mockBrandRepo.EXPECT().GetForUpdate(gomock.Any(), "BRD002").Return(brand, nil)
		mockCampaignRepo.EXPECT().ListByBrandID(gomock.Any(), "BRD002").Return([]*domain.Campaign{campaign}, nil)
		mockScheduleRepo.EXPECT().ListByBrandID(gomock.Any(), "BRD002").Return(schedules, nil)
		mockCampaignRepo.EXPECT().UpdateFlags(gomock.Any(), campaign).Return(nil)

		summary, err := service.RunPeriodicSweep(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 1, summary.CampaignsChanged)
		assert.False(t, campaign.IsActive)
		assert.True(t, campaign.IsPausedByDayparting)
		assert.False(t, campaign.IsPausedByBudget)
	})

	t.Run("Deve seguir para as próximas marcas quando uma falha", func(t *testing.T) {
		goodBrand := &domain.Brand{
			ID:            "BRD004",
			DailyBudget:   100.0,
			MonthlyBudget: 1000.0,
			IsActive:      true,
		}

		mockBrandRepo.EXPECT().ListIDs(false).Return([]string{"BRD003", "BRD004"}, nil)
		mockBrandRepo.EXPECT().GetForUpdate(gomock.Any(), "BRD003").Return(nil, assert.AnError)
		mockBrandRepo.EXPECT().GetForUpdate(gomock.Any(), "BRD004").Return(goodBrand, nil)
		mockCampaignRepo.EXPECT().ListByBrandID(gomock.Any(), "BRD004").Return(nil, nil)
		mockScheduleRepo.EXPECT().ListByBrandID(gomock.Any(), "BRD004").Return(nil, nil)

		summary, err := service.RunPeriodicSweep(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 1, summary.BrandsProcessed)
		assert.Equal(t, 1, summary.BrandsFailed)
		assert.Equal(t, []string{"BRD003"}, summary.FailedBrandIDs)
	})

	t.Run("Deve repetir a marca uma vez após conflito de concorrência", func(t *testing.T) {
		brand := &domain.Brand{
			ID:            "BRD005",
			DailyBudget:   100.0,
			MonthlyBudget: 1000.0,
			IsActive:      true,
		}

		mockBrandRepo.EXPECT().ListIDs(false).Return([]string{"BRD005"}, nil)
		mockBrandRepo.EXPECT().GetForUpdate(gomock.Any(), "BRD005").Return(nil, &pq.Error{Code: "40001"})
		mockBrandRepo.EXPECT().GetForUpdate(gomock.Any(), "BRD005").Return(brand, nil)
		mockCampaignRepo.EXPECT().ListByBrandID(gomock.Any(), "BRD005").Return(nil, nil)
		mockScheduleRepo.EXPECT().ListByBrandID(gomock.Any(), "BRD005").Return(nil, nil)

		summary, err := service.RunPeriodicSweep(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 1, summary.BrandsProcessed)
		assert.Equal(t, 0, summary.BrandsFailed)
	})
}

func TestService_ForceBrandReset(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockBrandRepo := mocks.NewMockBrandRepository(ctrl)
	mockCampaignRepo := mocks.NewMockCampaignRepository(ctrl)
	mockScheduleRepo := mocks.NewMockDaypartingScheduleRepository(ctrl)

	service := newTestService(mockBrandRepo, mockCampaignRepo, mockScheduleRepo)

	t.Run("Deve rejeitar período desconhecido", func(t *testing.T) {
		result, err := service.ForceBrandReset(context.Background(), "BRD001", "weekly")

		assert.ErrorIs(t, err, ErrInvalidResetPeriod)
		assert.Nil(t, result)
	})

	t.Run("Deve zerar só o total diário no período daily", func(t *testing.T) {
		brand := &domain.Brand{
			ID:            "BRD001",
			DailyBudget:   100.0,
			DailySpend:    120.0,
			MonthlyBudget: 1000.0,
			MonthlySpend:  300.0,
			IsActive:      true,
		}

		mockBrandRepo.EXPECT().GetForUpdate(gomock.Any(), "BRD001").Return(brand, nil)
		mockBrandRepo.EXPECT().UpdateSpendTotals(gomock.Any(), brand).Return(nil)
		mockCampaignRepo.EXPECT().ListByBrandID(gomock.Any(), "BRD001").Return(nil, nil)
		mockScheduleRepo.EXPECT().ListByBrandID(gomock.Any(), "BRD001").Return(nil, nil)

		result, err := service.ForceBrandReset(context.Background(), "BRD001", ResetPeriodDaily)

		assert.NoError(t, err)
		assert.Equal(t, 0.0, result.DailySpend)
		assert.Equal(t, 300.0, result.MonthlySpend)
		assert.Equal(t, domain.BudgetOK, result.Verdict)
	})

	t.Run("Deve retornar erro quando a marca não existe", func(t *testing.T) {
		mockBrandRepo.EXPECT().GetForUpdate(gomock.Any(), "BRD999").Return(nil, nil)

		result, err := service.ForceBrandReset(context.Background(), "BRD999", ResetPeriodMonthly)

		assert.ErrorIs(t, err, ErrBrandNotFound)
		assert.Nil(t, result)
	})
}

func TestService_RefreshCampaignDayparting(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockBrandRepo := mocks.NewMockBrandRepository(ctrl)
	mockCampaignRepo := mocks.NewMockCampaignRepository(ctrl)
	mockScheduleRepo := mocks.NewMockDaypartingScheduleRepository(ctrl)

	service := newTestService(mockBrandRepo, mockCampaignRepo, mockScheduleRepo)

	t.Run("Deve manter a pausa por orçamento mesmo dentro da janela", func(t *testing.T) {
		overBudgetBrand := &domain.Brand{
			ID:            "BRD001",
			DailyBudget:   100.0,
			DailySpend:    150.0,
			MonthlyBudget: 1000.0,
			IsActive:      true,
		}
		campaign := &domain.Campaign{
			ID:               "CMP001",
			BrandID:          "BRD001",
			IsActive:         false,
			IsPausedByBudget: true,
		}

		mockCampaignRepo.EXPECT().GetByID("CMP001").Return(campaign, nil).Times(2)
		mockBrandRepo.EXPECT().GetForUpdate(gomock.Any(), "BRD001").Return(overBudgetBrand, nil)
		mockScheduleRepo.EXPECT().ListByCampaignID(gomock.Any(), "CMP001").Return(nil, nil)

		state, err := service.RefreshCampaignDayparting(context.Background(), "CMP001")

		assert.NoError(t, err)
		assert.False(t, state.IsActive)
		assert.True(t, state.IsPausedByBudget)
		assert.False(t, state.IsPausedByDayparting)
	})

	t.Run("Deve pausar por dayparting campanha fora da janela", func(t *testing.T) {
		brand := &domain.Brand{
			ID:            "BRD001",
			DailyBudget:   100.0,
			MonthlyBudget: 1000.0,
			IsActive:      true,
		}
		campaign := &domain.Campaign{ID: "CMP002", BrandID: "BRD001", IsActive: true}

		schedules := []*domain.DaypartingSchedule{
			{
				CampaignID: "CMP002",
				DayOfWeek:  domain.Sunday,
				StartTime:  domain.NewTimeOfDay(9, 0, 0),
				EndTime:    domain.NewTimeOfDay(17, 0, 0),
				IsActive:   true,
			},
		}

		mockCampaignRepo.EXPECT().GetByID("CMP002").Return(campaign, nil).Times(2)
		mockBrandRepo.EXPECT().GetForUpdate(gomock.Any(), "BRD001").Return(brand, nil)
		mockScheduleRepo.EXPECT().ListByCampaignID(gomock.Any(), "CMP002").Return(schedules, nil)
		mockCampaignRepo.EXPECT().UpdateFlags(gomock.Any(), campaign).Return(nil)

		state, err := service.RefreshCampaignDayparting(context.Background(), "CMP002")

		assert.NoError(t, err)
		assert.False(t, state.IsActive)
		assert.True(t, state.IsPausedByDayparting)
	})

	t.Run("Deve retornar erro quando a campanha não existe", func(t *testing.T) {
		mockCampaignRepo.EXPECT().GetByID("CMP999").Return(nil, nil)

		state, err := service.RefreshCampaignDayparting(context.Background(), "CMP999")

		assert.ErrorIs(t, err, ErrCampaignNotFound)
		assert.Nil(t, state)
	})
}
