package turnModel

import (
	"context"
	"time"

	"github.com/akolanti/OCRBot/internal/domain/botModel"
)

type TurnStatus string
type Step string
type Outcome string

const (
	TurnStatusQueued   TurnStatus = "QUEUED"
	TurnStatusRunning  TurnStatus = "RUNNING"
	TurnStatusComplete TurnStatus = "COMPLETE"
	TurnStatusError    TurnStatus = "Error"

	StepInit      Step = "Init"
	StepRoute     Step = "Route"
	StepFetch     Step = "Fetch"
	StepOCR       Step = "OCR"
	StepDocument  Step = "Document"
	StepSummarize Step = "Summarize"
	StepReply     Step = "Reply"
	StepWelcome   Step = "Welcome"
	StepComplete  Step = "Complete"

	OutcomeIgnored        Outcome = "ignored"
	OutcomeReplied        Outcome = "replied"
	OutcomeWelcomed       Outcome = "welcomed"
	OutcomeDownloadFailed Outcome = "download_failed"
	OutcomeNotRecognized  Outcome = "not_recognized"
	OutcomeOCRFailed      Outcome = "ocr_failed"
	OutcomeTurnError      Outcome = "turn_error"
)

// Turn tracks one inbound activity through the worker pool.
// Only bookkeeping lives here, never the image or any text taken from it.
type Turn struct {
	Id          string            `json:"id"`
	TraceId     string            `json:"trace_id"`
	Activity    botModel.Activity `json:"-"`
	ActivityId  string            `json:"activity_id"`
	ChannelId   string            `json:"channel_id"`
	Type        string            `json:"activity_type"`
	Status      TurnStatus        `json:"status"`
	CurrentStep Step              `json:"current_step"`
	Outcome     Outcome           `json:"outcome,omitempty"`
	Error       TurnError         `json:"error,omitempty"`
	CreatedTime time.Time         `json:"created_time"`
	EndTime     time.Time         `json:"end_time,omitempty"`
}

type TurnError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// TurnStore keeps turn records for the status route; records expire on their own.
type TurnStore interface {
	GetTurn(ctx context.Context, turnId string) (Turn, bool)
	SaveTurn(ctx context.Context, turn Turn) error
}

// ActivityStore remembers recently delivered activity ids.
type ActivityStore interface {
	// MarkSeen records id and reports whether it was new.
	MarkSeen(ctx context.Context, activityId string) (bool, error)
}
