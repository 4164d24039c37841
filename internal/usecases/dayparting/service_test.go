package dayparting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/budget-manager-api/infrastructure/repository/mocks"
	"github.com/vfg2006/budget-manager-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func TestInWindow(t *testing.T) {
	// 15 de janeiro de 2024 é uma segunda-feira (day_of_week = 0)
	monday := func(hour, minute, second int) time.Time {
		return time.Date(2024, 1, 15, hour, minute, second, 0, time.UTC)
	}

	businessHours := &domain.DaypartingSchedule{
		ID:         "SCH001",
		CampaignID: "CMP001",
		DayOfWeek:  domain.Monday,
		StartTime:  domain.NewTimeOfDay(9, 0, 0),
		EndTime:    domain.NewTimeOfDay(17, 0, 0),
		IsActive:   true,
	}

	tests := []struct {
		name      string
		schedules []*domain.DaypartingSchedule
		at        time.Time
		expected  bool
	}{
		{
			name:      "Deve estar dentro da janela em horário comercial",
			schedules: []*domain.DaypartingSchedule{businessHours},
			at:        monday(10, 0, 0),
			expected:  true,
		},
		{
			name:      "Deve estar fora da janela após o fim do expediente",
			schedules: []*domain.DaypartingSchedule{businessHours},
			at:        monday(18, 0, 0),
			expected:  false,
		},
		{
			name:      "Deve incluir o limite inicial da janela",
			schedules: []*domain.DaypartingSchedule{businessHours},
			at:        monday(9, 0, 0),
			expected:  true,
		},
		{
			name:      "Deve incluir o limite final da janela",
			schedules: []*domain.DaypartingSchedule{businessHours},
			at:        monday(17, 0, 0),
			expected:  true,
		},
		{
			name:      "Deve estar fora um segundo depois do limite final",
			schedules: []*domain.DaypartingSchedule{businessHours},
			at:        monday(17, 0, 1),
			expected:  false,
		},
		{
			name:      "Deve estar fora em outro dia da semana mesmo no horário da janela",
			schedules: []*domain.DaypartingSchedule{businessHours},
			at:        time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC), // terça-feira
			expected:  false,
		},
		{
			name:      "Deve estar dentro quando a campanha não tem nenhuma agenda",
			schedules: nil,
			at:        monday(3, 0, 0),
			expected:  true,
		},
		{
			name: "Deve estar fora quando todas as agendas estão inativas",
			schedules: []*domain.DaypartingSchedule{
				{
					DayOfWeek: domain.Monday,
					StartTime: domain.NewTimeOfDay(0, 0, 0),
					EndTime:   domain.NewTimeOfDay(23, 59, 59),
					IsActive:  false,
				},
			},
			at:       monday(10, 0, 0),
			expected: false,
		},
		{
			name: "Deve bastar uma agenda casar quando há várias janelas",
			schedules: []*domain.DaypartingSchedule{
				businessHours,
				{
					DayOfWeek: domain.Monday,
					StartTime: domain.NewTimeOfDay(20, 0, 0),
					EndTime:   domain.NewTimeOfDay(22, 0, 0),
					IsActive:  true,
				},
			},
			at:       monday(21, 0, 0),
			expected: true,
		},
		{
			name: "Deve converter o instante para UTC antes de comparar",
			schedules: []*domain.DaypartingSchedule{
				businessHours,
			},
			// 07:00 em UTC-3 equivale a 10:00 UTC da mesma segunda-feira
			at:       time.Date(2024, 1, 15, 7, 0, 0, 0, time.FixedZone("BRT", -3*3600)),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := InWindow(tt.schedules, tt.at)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestService_ValidateSchedule(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCampaignRepo := mocks.NewMockCampaignRepository(ctrl)
	mockScheduleRepo := mocks.NewMockDaypartingScheduleRepository(ctrl)

	service := &Service{
		campaignRepo: mockCampaignRepo,
		scheduleRepo: mockScheduleRepo,
	}

	campaign := &domain.Campaign{
		ID:      "CMP001",
		BrandID: "BRD001",
		Name:    "Campanha A",
	}

	existing := []*domain.DaypartingSchedule{
		{
			ID:         "SCH001",
			CampaignID: "CMP001",
			DayOfWeek:  domain.Monday,
			StartTime:  domain.NewTimeOfDay(9, 0, 0),
			EndTime:    domain.NewTimeOfDay(12, 0, 0),
			IsActive:   true,
		},
	}

	tests := []struct {
		name     string
		req      *domain.ScheduleValidationRequest
		setup    func()
		validate func(t *testing.T, result *domain.ScheduleValidationResult, err error)
	}{
		{
			name: "Deve aceitar uma agenda válida sem sobreposição",
			req: &domain.ScheduleValidationRequest{
				CampaignID: "CMP001",
				DayOfWeek:  domain.Tuesday,
				StartTime:  "09:00",
				EndTime:    "17:00",
			},
			setup: func() {
				mockCampaignRepo.EXPECT().GetByID("CMP001").Return(campaign, nil)
				mockScheduleRepo.EXPECT().ListByCampaignID(gomock.Any(), "CMP001").Return(existing, nil)
			},
			validate: func(t *testing.T, result *domain.ScheduleValidationResult, err error) {
				assert.NoError(t, err)
				assert.True(t, result.Valid)
				assert.Equal(t, "CMP001", result.CampaignID)
				assert.Equal(t, "09:00:00", result.StartTime)
				assert.Equal(t, "17:00:00", result.EndTime)
			},
		},
		{
			name: "Deve rejeitar quando a campanha não existe",
			req: &domain.ScheduleValidationRequest{
				CampaignID: "CMP999",
				DayOfWeek:  domain.Monday,
				StartTime:  "09:00",
				EndTime:    "17:00",
			},
			setup: func() {
				mockCampaignRepo.EXPECT().GetByID("CMP999").Return(nil, nil)
			},
			validate: func(t *testing.T, result *domain.ScheduleValidationResult, err error) {
				assert.NoError(t, err)
				assert.False(t, result.Valid)
				assert.Equal(t, "Campanha não encontrada", result.Error)
			},
		},
		{
			name: "Deve rejeitar dia da semana fora do intervalo",
			req: &domain.ScheduleValidationRequest{
				CampaignID: "CMP001",
				DayOfWeek:  7,
				StartTime:  "09:00",
				EndTime:    "17:00",
			},
			setup: func() {
				mockCampaignRepo.EXPECT().GetByID("CMP001").Return(campaign, nil)
			},
			validate: func(t *testing.T, result *domain.ScheduleValidationResult, err error) {
				assert.NoError(t, err)
				assert.False(t, result.Valid)
				assert.Contains(t, result.Error, "Dia da semana")
			},
		},
		{
			name: "Deve rejeitar horário mal formado",
			req: &domain.ScheduleValidationRequest{
				CampaignID: "CMP001",
				DayOfWeek:  domain.Monday,
				StartTime:  "25:00",
				EndTime:    "17:00",
			},
			setup: func() {
				mockCampaignRepo.EXPECT().GetByID("CMP001").Return(campaign, nil)
			},
			validate: func(t *testing.T, result *domain.ScheduleValidationResult, err error) {
				assert.NoError(t, err)
				assert.False(t, result.Valid)
				assert.Contains(t, result.Error, "Formato de horário inválido")
			},
		},
		{
			name: "Deve rejeitar quando o início não é anterior ao fim",
			req: &domain.ScheduleValidationRequest{
				CampaignID: "CMP001",
				DayOfWeek:  domain.Monday,
				StartTime:  "17:00",
				EndTime:    "09:00",
			},
			setup: func() {
				mockCampaignRepo.EXPECT().GetByID("CMP001").Return(campaign, nil)
			},
			validate: func(t *testing.T, result *domain.ScheduleValidationResult, err error) {
				assert.NoError(t, err)
				assert.False(t, result.Valid)
				assert.Contains(t, result.Error, "anterior ao horário final")
			},
		},
		{
			name: "Deve rejeitar sobreposição com janela existente do mesmo dia",
			req: &domain.ScheduleValidationRequest{
				CampaignID: "CMP001",
				DayOfWeek:  domain.Monday,
				StartTime:  "11:00",
				EndTime:    "14:00",
			},
			setup: func() {
				mockCampaignRepo.EXPECT().GetByID("CMP001").Return(campaign, nil)
				mockScheduleRepo.EXPECT().ListByCampaignID(gomock.Any(), "CMP001").Return(existing, nil)
			},
			validate: func(t *testing.T, result *domain.ScheduleValidationResult, err error) {
				assert.NoError(t, err)
				assert.False(t, result.Valid)
				assert.Contains(t, result.Error, "sobrepõe")
			},
		},
		{
			name: "Deve aceitar janela que apenas encosta na borda de outra",
			req: &domain.ScheduleValidationRequest{
				CampaignID: "CMP001",
				DayOfWeek:  domain.Monday,
				StartTime:  "12:00",
				EndTime:    "15:00",
			},
			setup: func() {
				mockCampaignRepo.EXPECT().GetByID("CMP001").Return(campaign, nil)
				mockScheduleRepo.EXPECT().ListByCampaignID(gomock.Any(), "CMP001").Return(existing, nil)
			},
			validate: func(t *testing.T, result *domain.ScheduleValidationResult, err error) {
				assert.NoError(t, err)
				assert.True(t, result.Valid)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()

			result, err := service.ValidateSchedule(tt.req)

			tt.validate(t, result, err)
		})
	}
}

func TestService_GetDaypartingStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCampaignRepo := mocks.NewMockCampaignRepository(ctrl)
	mockScheduleRepo := mocks.NewMockDaypartingScheduleRepository(ctrl)

	service := &Service{
		campaignRepo: mockCampaignRepo,
		scheduleRepo: mockScheduleRepo,
	}

	t.Run("Deve retornar a situação da campanha com contagem de agendas", func(t *testing.T) {
		campaign := &domain.Campaign{
			ID:                   "CMP001",
			Name:                 "Campanha A",
			IsActive:             false,
			IsPausedByDayparting: true,
		}

		mockCampaignRepo.EXPECT().GetByID("CMP001").Return(campaign, nil)
		mockScheduleRepo.EXPECT().ListByCampaignID(gomock.Any(), "CMP001").Return([]*domain.DaypartingSchedule{
			{ID: "SCH001", DayOfWeek: domain.Monday, StartTime: domain.NewTimeOfDay(9, 0, 0), EndTime: domain.NewTimeOfDay(17, 0, 0), IsActive: true},
			{ID: "SCH002", DayOfWeek: domain.Tuesday, StartTime: domain.NewTimeOfDay(9, 0, 0), EndTime: domain.NewTimeOfDay(17, 0, 0), IsActive: false},
		}, nil)

		statuses, err := service.GetDaypartingStatus("CMP001")

		assert.NoError(t, err)
		assert.Len(t, statuses, 1)
		assert.Equal(t, "CMP001", statuses[0].CampaignID)
		assert.Equal(t, 2, statuses[0].SchedulesTotal)
		assert.Equal(t, 1, statuses[0].SchedulesActive)
		assert.True(t, statuses[0].IsPausedByDayparting)
	})

	t.Run("Deve retornar erro quando a campanha não existe", func(t *testing.T) {
		mockCampaignRepo.EXPECT().GetByID("CMP999").Return(nil, nil)

		statuses, err := service.GetDaypartingStatus("CMP999")

		assert.ErrorIs(t, err, ErrCampaignNotFound)
		assert.Nil(t, statuses)
	})
}
