package model

// Limits — глобальные лимиты записей студента (текущая конфигурация, без истории)
type Limits struct {
	MaxPerDay  int `json:"maxPerDay"`
	MaxPerWeek int `json:"maxPerWeek"`
}

// DefaultLimits applies when the limits collection has never been written
func DefaultLimits() Limits {
	return Limits{MaxPerDay: 1, MaxPerWeek: 3}
}
