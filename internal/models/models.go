package models

import "time"

// ConvertRequest carries the text typed into the amount field
type ConvertRequest struct {
	Input string `json:"input" form:"input"`
}

// ConvertResponse is a successful conversion
type ConvertResponse struct {
	Input     string `json:"input"`
	Amount    string `json:"amount"`
	Rate      string `json:"rate"`
	Converted string `json:"converted"`
	Formatted string `json:"formatted"`
	Result    string `json:"result"`
}

// EditInputRequest proposes new text for a session's amount field
type EditInputRequest struct {
	Text *string `json:"text" binding:"required"`
}

// SessionResponse describes a form session
type SessionResponse struct {
	ID        string    `json:"id"`
	Input     string    `json:"input"`
	Result    string    `json:"result"`
	Accepted  *bool     `json:"accepted,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type HealthCheck struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	Rate      string    `json:"rate"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
