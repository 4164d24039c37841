package domain

import (
	"time"
)

type BudgetVerdict string

const (
	BudgetOK              BudgetVerdict = "OK"
	BudgetDailyExceeded   BudgetVerdict = "DAILY_EXCEEDED"
	BudgetMonthlyExceeded BudgetVerdict = "MONTHLY_EXCEEDED"
)

// Exceeded informa se o veredito representa estouro de orçamento, seja diário ou mensal.
func (v BudgetVerdict) Exceeded() bool {
	return v != BudgetOK
}

type Brand struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	DailyBudget   float64   `json:"daily_budget"`
	MonthlyBudget float64   `json:"monthly_budget"`
	DailySpend    float64   `json:"daily_spend"`
	MonthlySpend  float64   `json:"monthly_spend"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (b *Brand) DailyRemaining() float64 {
	if remaining := b.DailyBudget - b.DailySpend; remaining > 0 {
		return remaining
	}
	return 0
}

func (b *Brand) MonthlyRemaining() float64 {
	if remaining := b.MonthlyBudget - b.MonthlySpend; remaining > 0 {
		return remaining
	}
	return 0
}

type BrandBudgetStatus struct {
	BrandID          string        `json:"brand_id"`
	BrandName        string        `json:"brand_name"`
	DailySpend       float64       `json:"daily_spend"`
	DailyBudget      float64       `json:"daily_budget"`
	DailyRemaining   float64       `json:"daily_remaining"`
	MonthlySpend     float64       `json:"monthly_spend"`
	MonthlyBudget    float64       `json:"monthly_budget"`
	MonthlyRemaining float64       `json:"monthly_remaining"`
	Violation        BudgetVerdict `json:"violation"`
	CampaignsActive  int           `json:"campaigns_active"`
	CampaignsPaused  int           `json:"campaigns_paused"`
}
