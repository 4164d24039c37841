package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	_ "github.com/lib/pq"
	"github.com/vfg2006/budget-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/budget-manager-api/internal/domain"
)

const campaignsTable = "campaigns"

type CampaignRepository interface {
	GetByID(campaignID string) (*domain.Campaign, error)
	List() ([]*domain.Campaign, error)
	ListByBrandID(q postgres.Queryer, brandID string) ([]*domain.Campaign, error)
	UpdateFlags(q postgres.Queryer, campaign *domain.Campaign) error
}

type campaignRepository struct {
	conn *postgres.Connection
}

func NewCampaignRepository(conn *postgres.Connection) CampaignRepository {
	return &campaignRepository{
		conn: conn,
	}
}

func (r *campaignRepository) GetByID(campaignID string) (*domain.Campaign, error) {
	campaignsSQL, campaignsArgs, err := squirrel.
		Select("id", "brand_id", "name", "is_active", "is_paused_by_budget", "is_paused_by_dayparting", "created_at", "updated_at").
		From(campaignsTable).
		Where(squirrel.Eq{"id": campaignID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	row := r.conn.QueryRow(campaignsSQL, campaignsArgs...)

	campaign := &domain.Campaign{}
	if err := row.Scan(
		&campaign.ID,
		&campaign.BrandID,
		&campaign.Name,
		&campaign.IsActive,
		&campaign.IsPausedByBudget,
		&campaign.IsPausedByDayparting,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return campaign, nil
}

func (r *campaignRepository) List() ([]*domain.Campaign, error) {
	return r.listCampaigns(r.conn, nil)
}

// ListByBrandID lista as campanhas da marca. Recebe o Queryer para que a
// leitura possa acontecer dentro da transação que segura o lock da marca.
func (r *campaignRepository) ListByBrandID(q postgres.Queryer, brandID string) ([]*domain.Campaign, error) {
	return r.listCampaigns(q, squirrel.Eq{"brand_id": brandID})
}

func (r *campaignRepository) listCampaigns(q postgres.Queryer, whereClause map[string]interface{}) ([]*domain.Campaign, error) {
	queryBuilder := squirrel.
		Select("id", "brand_id", "name", "is_active", "is_paused_by_budget", "is_paused_by_dayparting", "created_at", "updated_at").
		From(campaignsTable).
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar)

	if whereClause != nil {
		queryBuilder = queryBuilder.Where(whereClause)
	}

	campaignsSQL, campaignsArgs, err := queryBuilder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(campaignsSQL, campaignsArgs...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	campaigns := make([]*domain.Campaign, 0)

	for rows.Next() {
		campaign := &domain.Campaign{}
		if err := rows.Scan(
			&campaign.ID,
			&campaign.BrandID,
			&campaign.Name,
			&campaign.IsActive,
			&campaign.IsPausedByBudget,
			&campaign.IsPausedByDayparting,
			&campaign.CreatedAt,
			&campaign.UpdatedAt,
		); err != nil {
			return nil, err
		}

		campaigns = append(campaigns, campaign)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return campaigns, nil
}

// UpdateFlags persiste as três flags derivadas da campanha. Somente o
// reconciliador chama este método.
func (r *campaignRepository) UpdateFlags(q postgres.Queryer, campaign *domain.Campaign) error {
	campaignsSQL, campaignsArgs, err := squirrel.
		Update(campaignsTable).
		Set("is_active", campaign.IsActive).
		Set("is_paused_by_budget", campaign.IsPausedByBudget).
		Set("is_paused_by_dayparting", campaign.IsPausedByDayparting).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": campaign.ID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := q.Exec(campaignsSQL, campaignsArgs...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
