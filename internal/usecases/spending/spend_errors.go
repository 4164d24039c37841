package spending

import (
	"errors"
	"fmt"
)

// Erros específicos para o registro de gastos
var (
	ErrInvalidAmount       = errors.New("spend amount must be positive")
	ErrCampaignNotFound    = errors.New("campaign not found")
	ErrBrandNotFound       = errors.New("brand not found")
	ErrInactiveBrand       = errors.New("brand is inactive")
	ErrConcurrencyConflict = errors.New("concurrency conflict on brand boundary")
	ErrDatabaseOperation   = errors.New("database operation error")
)

// SpendError é um erro com contexto adicional para gastos
type SpendError struct {
	Err        error  // Erro base
	Code       string // Código de erro para API
	CampaignID string // ID da campanha envolvida (quando aplicável)
	Details    string // Detalhes adicionais
}

// Error implementa a interface error
func (e *SpendError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

// Unwrap retorna o erro subjacente
func (e *SpendError) Unwrap() error {
	return e.Err
}

// NewSpendError cria um novo SpendError
func NewSpendError(err error, code string, details string) *SpendError {
	return &SpendError{
		Err:     err,
		Code:    code,
		Details: details,
	}
}

// NewSpendErrorWithID cria um novo SpendError com ID da campanha
func NewSpendErrorWithID(err error, code string, campaignID string, details string) *SpendError {
	return &SpendError{
		Err:        err,
		Code:       code,
		CampaignID: campaignID,
		Details:    details,
	}
}
