package repository

import (
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	"github.com/vfg2006/budget-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/budget-manager-api/internal/domain"
)

const schedulesTable = "dayparting_schedules"

// DaypartingScheduleRepository só lê: as agendas são criadas pela superfície
// de gestão externa e o motor apenas as consulta.
type DaypartingScheduleRepository interface {
	ListByCampaignID(q postgres.Queryer, campaignID string) ([]*domain.DaypartingSchedule, error)
	ListByBrandID(q postgres.Queryer, brandID string) (map[string][]*domain.DaypartingSchedule, error)
}

type daypartingScheduleRepository struct {
	conn *postgres.Connection
}

func NewDaypartingScheduleRepository(conn *postgres.Connection) DaypartingScheduleRepository {
	return &daypartingScheduleRepository{
		conn: conn,
	}
}

func (r *daypartingScheduleRepository) ListByCampaignID(q postgres.Queryer, campaignID string) ([]*domain.DaypartingSchedule, error) {
	schedulesSQL, schedulesArgs, err := squirrel.
		Select("id", "campaign_id", "day_of_week", "start_time", "end_time", "is_active", "created_at", "updated_at").
		From(schedulesTable).
		Where(squirrel.Eq{"campaign_id": campaignID}).
		OrderBy("day_of_week ASC", "start_time ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(schedulesSQL, schedulesArgs...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	return r.deserializeSchedules(rows)
}

// ListByBrandID carrega de uma vez as agendas de todas as campanhas da marca,
// agrupadas por campanha. Evita uma consulta por campanha na varredura.
func (r *daypartingScheduleRepository) ListByBrandID(q postgres.Queryer, brandID string) (map[string][]*domain.DaypartingSchedule, error) {
	schedulesSQL, schedulesArgs, err := squirrel.
		Select("ds.id", "ds.campaign_id", "ds.day_of_week", "ds.start_time", "ds.end_time", "ds.is_active", "ds.created_at", "ds.updated_at").
		From("dayparting_schedules ds").
		Join("campaigns c ON ds.campaign_id = c.id").
		Where(squirrel.Eq{"c.brand_id": brandID}).
		OrderBy("ds.campaign_id ASC", "ds.day_of_week ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(schedulesSQL, schedulesArgs...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return map[string][]*domain.DaypartingSchedule{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	schedules, err := r.deserializeSchedules(rows)
	if err != nil {
		return nil, err
	}

	byCampaign := make(map[string][]*domain.DaypartingSchedule)
	for _, schedule := range schedules {
		byCampaign[schedule.CampaignID] = append(byCampaign[schedule.CampaignID], schedule)
	}

	return byCampaign, nil
}

func (r *daypartingScheduleRepository) deserializeSchedules(rows *sql.Rows) ([]*domain.DaypartingSchedule, error) {
	schedules := make([]*domain.DaypartingSchedule, 0)

	for rows.Next() {
		schedule := &domain.DaypartingSchedule{}
		if err := rows.Scan(
			&schedule.ID,
			&schedule.CampaignID,
			&schedule.DayOfWeek,
			&schedule.StartTime,
			&schedule.EndTime,
			&schedule.IsActive,
			&schedule.CreatedAt,
			&schedule.UpdatedAt,
		); err != nil {
			return nil, err
		}

		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return schedules, nil
}
