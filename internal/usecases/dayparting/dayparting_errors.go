package dayparting

import (
	"errors"
	"fmt"
)

// Erros específicos para o contexto de dayparting
var (
	ErrCampaignNotFound  = errors.New("campaign not found")
	ErrInvalidSchedule   = errors.New("invalid dayparting schedule")
	ErrDatabaseOperation = errors.New("database operation error")
)

// DaypartingError é um erro com contexto adicional para dayparting
type DaypartingError struct {
	Err        error  // Erro base
	Code       string // Código de erro para API
	CampaignID string // ID da campanha envolvida (quando aplicável)
	Details    string // Detalhes adicionais
}

// Error implementa a interface error
func (e *DaypartingError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

// Unwrap retorna o erro subjacente
func (e *DaypartingError) Unwrap() error {
	return e.Err
}

// NewDaypartingError cria um novo DaypartingError
func NewDaypartingError(err error, code string, details string) *DaypartingError {
	return &DaypartingError{
		Err:     err,
		Code:    code,
		Details: details,
	}
}

// NewDaypartingErrorWithID cria um novo DaypartingError com ID da campanha
func NewDaypartingErrorWithID(err error, code string, campaignID string, details string) *DaypartingError {
	return &DaypartingError{
		Err:        err,
		Code:       code,
		CampaignID: campaignID,
		Details:    details,
	}
}
