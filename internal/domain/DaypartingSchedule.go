package domain

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"
)

// Convenção de dia da semana do produto: segunda-feira = 0 ... domingo = 6.
const (
	Monday    = 0
	Tuesday   = 1
	Wednesday = 2
	Thursday  = 3
	Friday    = 4
	Saturday  = 5
	Sunday    = 6
)

// WeekdayIndex converte o dia da semana de t (domingo = 0 no Go) para a
// convenção do produto (segunda-feira = 0).
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// TimeOfDay representa um horário do dia em segundos desde a meia-noite,
// sem data associada. Comparações entre horários são comparações de inteiros.
type TimeOfDay int

func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(hour*3600 + minute*60 + second)
}

// TimeOfDayOf extrai o horário do dia de t em UTC.
func TimeOfDayOf(t time.Time) TimeOfDay {
	u := t.UTC()
	return NewTimeOfDay(u.Hour(), u.Minute(), u.Second())
}

// ParseTimeOfDay aceita os formatos HH:MM e HH:MM:SS.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return NewTimeOfDay(t.Hour(), t.Minute(), t.Second()), nil
		}
	}

	return 0, fmt.Errorf("horário inválido: %q", value)
}

func (t TimeOfDay) Hour() int   { return int(t) / 3600 }
func (t TimeOfDay) Minute() int { return (int(t) % 3600) / 60 }
func (t TimeOfDay) Second() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	value, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("horário inválido: %s", data)
	}

	parsed, err := ParseTimeOfDay(value)
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}

// Scan implementa sql.Scanner. O driver pq entrega colunas time como time.Time
// com a data zerada.
func (t *TimeOfDay) Scan(value interface{}) error {
	switch v := value.(type) {
	case time.Time:
		*t = NewTimeOfDay(v.Hour(), v.Minute(), v.Second())
		return nil
	case []byte:
		parsed, err := ParseTimeOfDay(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case nil:
		*t = 0
		return nil
	}

	return fmt.Errorf("tipo inesperado para horário: %T", value)
}

// Value implementa driver.Valuer.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

type DaypartingSchedule struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	DayOfWeek  int       `json:"day_of_week"`
	StartTime  TimeOfDay `json:"start_time"`
	EndTime    TimeOfDay `json:"end_time"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Matches informa se o instante t, avaliado em UTC, cai dentro da janela da
// agenda: mesmo dia da semana e start_time <= horário <= end_time, com os dois
// limites inclusivos. Agendas inativas nunca casam.
func (s *DaypartingSchedule) Matches(t time.Time) bool {
	if !s.IsActive {
		return false
	}

	u := t.UTC()
	if WeekdayIndex(u) != s.DayOfWeek {
		return false
	}

	tod := TimeOfDayOf(u)
	return s.StartTime <= tod && tod <= s.EndTime
}

type CampaignDaypartingStatus struct {
	CampaignID           string `json:"campaign_id"`
	CampaignName         string `json:"campaign_name"`
	SchedulesTotal       int    `json:"schedules_total"`
	SchedulesActive      int    `json:"schedules_active"`
	InWindow             bool   `json:"in_window"`
	IsPausedByDayparting bool   `json:"is_paused_by_dayparting"`
	IsActive             bool   `json:"is_active"`
}

type ScheduleValidationRequest struct {
	CampaignID string `json:"campaign_id"`
	DayOfWeek  int    `json:"day_of_week"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

type ScheduleValidationResult struct {
	Valid        bool   `json:"valid"`
	Error        string `json:"error,omitempty"`
	CampaignID   string `json:"campaign_id,omitempty"`
	CampaignName string `json:"campaign_name,omitempty"`
	DayOfWeek    *int   `json:"day_of_week,omitempty"`
	StartTime    string `json:"start_time,omitempty"`
	EndTime      string `json:"end_time,omitempty"`
}
