package domain

import (
	"time"
)

// Spend é um registro imutável de gasto. Depois de criado nunca é alterado nem
// removido pelo motor; retenção e expurgo são responsabilidade externa.
type Spend struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	Amount     float64   `json:"amount"`
	SpentAt    time.Time `json:"spent_at"`
	CreatedAt  time.Time `json:"created_at"`
}

type RecordSpendRequest struct {
	CampaignID string     `json:"campaign_id"`
	Amount     float64    `json:"amount"`
	SpentAt    *time.Time `json:"spent_at,omitempty"`
}

// SpendOutcome descreve o resultado de um gasto registrado: os novos totais da
// marca e o estado de cada campanha depois da reavaliação de orçamento.
type SpendOutcome struct {
	SpendID      string          `json:"spend_id"`
	BrandID      string          `json:"brand_id"`
	DailySpend   float64         `json:"daily_spend"`
	MonthlySpend float64         `json:"monthly_spend"`
	Verdict      BudgetVerdict   `json:"verdict"`
	Campaigns    []CampaignState `json:"campaigns"`
}
