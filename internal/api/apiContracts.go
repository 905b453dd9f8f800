package api

import "time"

type TurnExternalStatus string

const (
	TurnStatusError TurnExternalStatus = "Error"
)

type TurnResponse struct {
	Id         string             `json:"id" example:"3f7c6a1e-8d2b-4c1a-9a53-0e6f1b2c4d5e"`
	ActivityId string             `json:"activity_id,omitempty" example:"1716912345678"`
	Result     Result             `json:"result"`
	Error      *TurnOutgoingError `json:"error,omitempty"`
	StartTime  time.Time          `json:"start_time"`
	EndTime    time.Time          `json:"end_time,omitempty"`
}

type TurnOutgoingError struct {
	Code    int    `json:"code" example:"404"`
	Message string `json:"message" example:"Turn not found"`
}

type Result struct {
	Status  string `json:"status" example:"COMPLETE"`
	Step    string `json:"step,omitempty" example:"Reply"`
	Outcome string `json:"outcome,omitempty" example:"replied"`
}

type InitTurnResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}
