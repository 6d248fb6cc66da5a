package service

import "errors"

var (
	ErrEmptyTicker      = errors.New("error empty ticker")
	ErrInvalidRiskValue = errors.New("error risk value must be an integer from 0 to 100")
	ErrInvalidScreen    = errors.New("error unknown screen")
	ErrInvalidTicker    = errors.New("error ticker cannot be shown on a button")
	ErrNoRegistry       = errors.New("error user registry is not configured")
)
