package reconciling

import (
	"errors"
	"fmt"
)

// Erros específicos para o contexto de reconciliação
var (
	ErrBrandNotFound       = errors.New("brand not found")
	ErrCampaignNotFound    = errors.New("campaign not found")
	ErrInvalidResetPeriod  = errors.New("invalid reset period")
	ErrConcurrencyConflict = errors.New("concurrency conflict on brand boundary")
	ErrDatabaseOperation   = errors.New("database operation error")
)

// ReconcileError é um erro com contexto adicional para reconciliação
type ReconcileError struct {
	Err     error  // Erro base
	Code    string // Código de erro para API
	BrandID string // ID da marca envolvida (quando aplicável)
	Details string // Detalhes adicionais
}

// Error implementa a interface error
func (e *ReconcileError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

// Unwrap retorna o erro subjacente
func (e *ReconcileError) Unwrap() error {
	return e.Err
}

// NewReconcileError cria um novo ReconcileError
func NewReconcileError(err error, code string, details string) *ReconcileError {
	return &ReconcileError{
		Err:     err,
		Code:    code,
		Details: details,
	}
}

// NewReconcileErrorWithID cria um novo ReconcileError com ID da marca
func NewReconcileErrorWithID(err error, code string, brandID string, details string) *ReconcileError {
	return &ReconcileError{
		Err:     err,
		Code:    code,
		BrandID: brandID,
		Details: details,
	}
}
