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

const brandsTable = "brands"

type BrandRepository interface {
	GetByID(brandID string) (*domain.Brand, error)
	List(onlyActive bool) ([]*domain.Brand, error)
	ListIDs(onlyActive bool) ([]string, error)
	GetForUpdate(q postgres.Queryer, brandID string) (*domain.Brand, error)
	UpdateSpendTotals(q postgres.Queryer, brand *domain.Brand) error
}

type brandRepository struct {
	conn *postgres.Connection
}

func NewBrandRepository(conn *postgres.Connection) BrandRepository {
	return &brandRepository{
		conn: conn,
	}
}

func (r *brandRepository) GetByID(brandID string) (*domain.Brand, error) {
	return r.getBrand(r.conn, squirrel.Eq{"id": brandID}, false)
}

// GetForUpdate carrega a marca travando a linha com SELECT ... FOR UPDATE.
// Deve rodar dentro de uma transação: o lock serializa gastos concorrentes,
// varredura e resets da mesma marca até o commit.
func (r *brandRepository) GetForUpdate(q postgres.Queryer, brandID string) (*domain.Brand, error) {
	return r.getBrand(q, squirrel.Eq{"id": brandID}, true)
}

func (r *brandRepository) getBrand(q postgres.Queryer, whereClause map[string]interface{}, forUpdate bool) (*domain.Brand, error) {
	queryBuilder := squirrel.
		Select("id", "name", "daily_budget", "monthly_budget", "daily_spend", "monthly_spend", "is_active", "created_at", "updated_at").
		From(brandsTable).
		Where(whereClause).
		PlaceholderFormat(squirrel.Dollar)

	if forUpdate {
		queryBuilder = queryBuilder.Suffix("FOR UPDATE")
	}

	brandsSQL, brandsArgs, err := queryBuilder.ToSql()
	if err != nil {
		return nil, err
	}

	row := q.QueryRow(brandsSQL, brandsArgs...)

	brand, err := r.deserializeBrand(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return brand, nil
}

func (r *brandRepository) deserializeBrand(row *sql.Row) (*domain.Brand, error) {
	brand := &domain.Brand{}

	if err := row.Scan(
		&brand.ID,
		&brand.Name,
		&brand.DailyBudget,
		&brand.MonthlyBudget,
		&brand.DailySpend,
		&brand.MonthlySpend,
		&brand.IsActive,
		&brand.CreatedAt,
		&brand.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return brand, nil
}

func (r *brandRepository) List(onlyActive bool) ([]*domain.Brand, error) {
	queryBuilder := squirrel.
		Select("id", "name", "daily_budget", "monthly_budget", "daily_spend", "monthly_spend", "is_active", "created_at", "updated_at").
		From(brandsTable).
		OrderBy("name ASC").
		PlaceholderFormat(squirrel.Dollar)

	if onlyActive {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"is_active": true})
	}

	brandsSQL, brandsArgs, err := queryBuilder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.Query(brandsSQL, brandsArgs...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	brands := make([]*domain.Brand, 0)

	for rows.Next() {
		brand := &domain.Brand{}
		if err := rows.Scan(
			&brand.ID,
			&brand.Name,
			&brand.DailyBudget,
			&brand.MonthlyBudget,
			&brand.DailySpend,
			&brand.MonthlySpend,
			&brand.IsActive,
			&brand.CreatedAt,
			&brand.UpdatedAt,
		); err != nil {
			return nil, err
		}

		brands = append(brands, brand)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return brands, nil
}

// ListIDs devolve apenas os IDs das marcas. Os jobs em lote usam essa foto
// para depois processar cada marca na sua própria transação.
func (r *brandRepository) ListIDs(onlyActive bool) ([]string, error) {
	queryBuilder := squirrel.
		Select("id").
		From(brandsTable).
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar)

	if onlyActive {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"is_active": true})
	}

	brandsSQL, brandsArgs, err := queryBuilder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.Query(brandsSQL, brandsArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *brandRepository) UpdateSpendTotals(q postgres.Queryer, brand *domain.Brand) error {
	queryBuilder := squirrel.
		Update(brandsTable).
		Set("daily_spend", brand.DailySpend).
		Set("monthly_spend", brand.MonthlySpend).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": brand.ID}).
		PlaceholderFormat(squirrel.Dollar)

	brandsSQL, brandsArgs, err := queryBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := q.Exec(brandsSQL, brandsArgs...)
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

// IsConcurrencyConflict identifica erros do Postgres causados por disputa da
// fronteira de consistência por marca: falha de serialização, deadlock ou lock
// indisponível. O chamador pode repetir a operação com segurança.
func IsConcurrencyConflict(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}
