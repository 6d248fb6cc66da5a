package model

import "github.com/KotFed0t/risk_analysis_bot/internal/portfolio"

type State int

const (
	DefaultState State = iota
	ExpectingTicker
	ExpectingRiskValue
)

type Screen string

const (
	ScreenHome      Screen = "home"
	ScreenPortfolio Screen = "portfolio"
)

func (s Screen) Valid() bool {
	return s == ScreenHome || s == ScreenPortfolio
}

// Session is the per-chat state shared by the home and portfolio screens.
type Session struct {
	State     State                `json:"state"`
	Screen    Screen               `json:"screen"`
	Selection *portfolio.Selection `json:"selection"`
	Risk      RiskValue            `json:"risk"`
}

func NewSession() Session {
	return Session{
		State:     DefaultState,
		Screen:    ScreenHome,
		Selection: portfolio.NewSelection(),
		Risk:      DefaultRisk,
	}
}

// Normalize repairs fields a decoded session may be missing.
func (s *Session) Normalize() {
	if s.Selection == nil {
		s.Selection = portfolio.NewSelection()
	}
	if !s.Screen.Valid() {
		s.Screen = ScreenHome
	}
	if !s.Risk.Valid() {
		s.Risk = NewRiskValue(s.Risk.Int())
	}
}
