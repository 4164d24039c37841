package dayparting

import (
	"time"

	"github.com/vfg2006/budget-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/budget-manager-api/infrastructure/repository"
	"github.com/vfg2006/budget-manager-api/internal/domain"
	"github.com/vfg2006/budget-manager-api/pkg/apiErrors"
)

// InWindow é a função pura que decide se a campanha está dentro de alguma
// janela de dayparting no instante t. Janelas do mesmo dia se unem: basta uma
// agenda ativa casar. Campanha sem nenhuma agenda cadastrada não é restringida
// por dayparting e conta como dentro da janela; agendas inativas não casam,
// mas a existência delas mantém a campanha restringida.
func InWindow(schedules []*domain.DaypartingSchedule, t time.Time) bool {
	if len(schedules) == 0 {
		return true
	}

	for _, schedule := range schedules {
		if schedule.Matches(t) {
			return true
		}
	}

	return false
}

type DaypartingService interface {
	GetDaypartingStatus(campaignID string) ([]*domain.CampaignDaypartingStatus, error)
	ValidateSchedule(req *domain.ScheduleValidationRequest) (*domain.ScheduleValidationResult, error)
}

type Service struct {
	conn         postgres.Conn
	campaignRepo repository.CampaignRepository
	scheduleRepo repository.DaypartingScheduleRepository
}

func NewService(
	conn postgres.Conn,
	campaignRepo repository.CampaignRepository,
	scheduleRepo repository.DaypartingScheduleRepository,
) DaypartingService {
	return &Service{
		conn:         conn,
		campaignRepo: campaignRepo,
		scheduleRepo: scheduleRepo,
	}
}

// GetDaypartingStatus devolve a situação de dayparting das campanhas,
// avaliada no momento da chamada. Com campaignID vazio, lista todas.
func (s *Service) GetDaypartingStatus(campaignID string) ([]*domain.CampaignDaypartingStatus, error) {
	var campaigns []*domain.Campaign

	if campaignID != "" {
		campaign, err := s.campaignRepo.GetByID(campaignID)
		if err != nil {
			return nil, NewDaypartingError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Erro ao buscar campanha no banco de dados")
		}
		if campaign == nil {
			return nil, NewDaypartingErrorWithID(ErrCampaignNotFound, apiErrors.ErrCampaignNotFound, campaignID, "Campanha não encontrada")
		}
		campaigns = []*domain.Campaign{campaign}
	} else {
		var err error
		campaigns, err = s.campaignRepo.List()
		if err != nil {
			return nil, NewDaypartingError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Erro ao listar campanhas no banco de dados")
		}
	}

	now := time.Now().UTC()
	statuses := make([]*domain.CampaignDaypartingStatus, 0, len(campaigns))

	for _, campaign := range campaigns {
		schedules, err := s.scheduleRepo.ListByCampaignID(s.conn, campaign.ID)
		if err != nil {
			return nil, NewDaypartingErrorWithID(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, campaign.ID, "Erro ao listar agendas da campanha")
		}

		active := 0
		for _, schedule := range schedules {
			if schedule.IsActive {
				active++
			}
		}

		statuses = append(statuses, &domain.CampaignDaypartingStatus{
			CampaignID:           campaign.ID,
			CampaignName:         campaign.Name,
			SchedulesTotal:       len(schedules),
			SchedulesActive:      active,
			InWindow:             InWindow(schedules, now),
			IsPausedByDayparting: campaign.IsPausedByDayparting,
			IsActive:             campaign.IsActive,
		})
	}

	return statuses, nil
}

// ValidateSchedule valida uma agenda candidata antes da criação pela
// superfície de gestão: dia da semana no intervalo, horários bem formados,
// início antes do fim e ausência de sobreposição com janelas já cadastradas
// para o mesmo dia. Janelas que apenas se tocam nas bordas não se sobrepõem.
func (s *Service) ValidateSchedule(req *domain.ScheduleValidationRequest) (*domain.ScheduleValidationResult, error) {
	campaign, err := s.campaignRepo.GetByID(req.CampaignID)
	if err != nil {
		return nil, NewDaypartingError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Erro ao buscar campanha no banco de dados")
	}
	if campaign == nil {
		return invalidSchedule("Campanha não encontrada"), nil
	}

	if req.DayOfWeek < domain.Monday || req.DayOfWeek > domain.Sunday {
		return invalidSchedule("Dia da semana deve estar entre 0 (segunda-feira) e 6 (domingo)"), nil
	}

	start, err := domain.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return invalidSchedule("Formato de horário inválido. Use HH:MM ou HH:MM:SS"), nil
	}

	end, err := domain.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return invalidSchedule("Formato de horário inválido. Use HH:MM ou HH:MM:SS"), nil
	}

	if start >= end {
		return invalidSchedule("Horário inicial deve ser anterior ao horário final"), nil
	}

	existing, err := s.scheduleRepo.ListByCampaignID(s.conn, req.CampaignID)
	if err != nil {
		return nil, NewDaypartingErrorWithID(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, req.CampaignID, "Erro ao listar agendas da campanha")
	}

	for _, schedule := range existing {
		if schedule.DayOfWeek == req.DayOfWeek && start < schedule.EndTime && end > schedule.StartTime {
			return invalidSchedule("Agenda sobrepõe uma janela existente para este dia"), nil
		}
	}

	dayOfWeek := req.DayOfWeek
	return &domain.ScheduleValidationResult{
		Valid:        true,
		CampaignID:   campaign.ID,
		CampaignName: campaign.Name,
		DayOfWeek:    &dayOfWeek,
		StartTime:    start.String(),
		EndTime:      end.String(),
	}, nil
}

func invalidSchedule(reason string) *domain.ScheduleValidationResult {
	return &domain.ScheduleValidationResult{
		Valid: false,
		Error: reason,
	}
}
