package repository

import (
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	_ "github.com/lib/pq"
	"github.com/vfg2006/budget-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/budget-manager-api/internal/domain"
)

const spendsTable = "spends"

// SpendRepository só insere: o registro de gasto é imutável e nunca é
// alterado ou removido pelo motor.
type SpendRepository interface {
	Insert(q postgres.Queryer, spend *domain.Spend) error
}

type spendRepository struct {
	conn *postgres.Connection
}

func NewSpendRepository(conn *postgres.Connection) SpendRepository {
	return &spendRepository{
		conn: conn,
	}
}

func (r *spendRepository) Insert(q postgres.Queryer, spend *domain.Spend) error {
	spendsSQL, spendsArgs, err := squirrel.
		Insert(spendsTable).
		Columns("id", "campaign_id", "amount", "spent_at").
		Values(spend.ID, spend.CampaignID, spend.Amount, spend.SpentAt).
		Suffix("RETURNING created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if err := q.QueryRow(spendsSQL, spendsArgs...).Scan(&spend.CreatedAt); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}
