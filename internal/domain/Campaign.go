package domain

import (
	"time"
)

type Campaign struct {
	ID                   string    `json:"id"`
	BrandID              string    `json:"brand_id"`
	Name                 string    `json:"name"`
	IsActive             bool      `json:"is_active"`
	IsPausedByBudget     bool      `json:"is_paused_by_budget"`
	IsPausedByDayparting bool      `json:"is_paused_by_dayparting"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// CampaignState carrega apenas as flags derivadas de uma campanha. As duas flags
// de pausa são mantidas separadas para que o motivo da inatividade permaneça
// consultável, e não apenas o fato dela.
type CampaignState struct {
	CampaignID           string `json:"campaign_id"`
	IsActive             bool   `json:"is_active"`
	IsPausedByBudget     bool   `json:"is_paused_by_budget"`
	IsPausedByDayparting bool   `json:"is_paused_by_dayparting"`
}

func (c *Campaign) State() CampaignState {
	return CampaignState{
		CampaignID:           c.ID,
		IsActive:             c.IsActive,
		IsPausedByBudget:     c.IsPausedByBudget,
		IsPausedByDayparting: c.IsPausedByDayparting,
	}
}

// ApplyState grava as flags derivadas na campanha e informa se algo mudou.
// Somente o reconciliador escreve nessas flags.
func (c *Campaign) ApplyState(state CampaignState) bool {
	if c.IsActive == state.IsActive &&
		c.IsPausedByBudget == state.IsPausedByBudget &&
		c.IsPausedByDayparting == state.IsPausedByDayparting {
		return false
	}

	c.IsActive = state.IsActive
	c.IsPausedByBudget = state.IsPausedByBudget
	c.IsPausedByDayparting = state.IsPausedByDayparting

	return true
}
