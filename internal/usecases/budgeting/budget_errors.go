package budgeting

import (
	"errors"
	"fmt"
)

// Erros específicos para o contexto de orçamento
var (
	ErrBrandNotFound     = errors.New("brand not found")
	ErrDatabaseOperation = errors.New("database operation error")
)

// BudgetError é um erro com contexto adicional para orçamento
type BudgetError struct {
	Err     error  // Erro base
	Code    string // Código de erro para API
	BrandID string // ID da marca envolvida (quando aplicável)
	Details string // Detalhes adicionais
}

// Error implementa a interface error
func (e *BudgetError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

// Unwrap retorna o erro subjacente
func (e *BudgetError) Unwrap() error {
	return e.Err
}

// NewBudgetError cria um novo BudgetError
func NewBudgetError(err error, code string, details string) *BudgetError {
	return &BudgetError{
		Err:     err,
		Code:    code,
		Details: details,
	}
}

// NewBudgetErrorWithID cria um novo BudgetError com ID da marca
func NewBudgetErrorWithID(err error, code string, brandID string, details string) *BudgetError {
	return &BudgetError{
		Err:     err,
		Code:    code,
		BrandID: brandID,
		Details: details,
	}
}
