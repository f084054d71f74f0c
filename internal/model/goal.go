package model

const (
	DefaultDailyTarget   = 300.0
	DefaultMinHourlyRate = 30.0
)

type Goal struct {
	DailyTarget   float64 `json:"daily_target"`
	MinHourlyRate float64 `json:"min_hourly_rate"`
}

func DefaultGoal() Goal {
	return Goal{DailyTarget: DefaultDailyTarget, MinHourlyRate: DefaultMinHourlyRate}
}

type GoalProgress struct {
	Earned     float64 `json:"earned"`
	Target     float64 `json:"target"`
	Percentage float64 `json:"percentage"`
	Remaining  float64 `json:"remaining"`
}

type NoticeLevel string

const (
	NoticeWarning NoticeLevel = "warning"
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
)

type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}
