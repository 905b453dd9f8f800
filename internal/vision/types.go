package vision

import "errors"

// OperationID is the handle of a Read job, the last segment of its Operation-Location.
type OperationID string

type ReadStatus string

const (
	StatusNotStarted ReadStatus = "notStarted"
	StatusRunning    ReadStatus = "running"
	StatusSucceeded  ReadStatus = "succeeded"
	StatusFailed     ReadStatus = "failed"
)

var (
	ErrTransport         = errors.New("vision service unreachable")
	ErrRecognitionEmpty  = errors.New("no text recognized")
	ErrRecognitionFailed = errors.New("read operation failed")
	ErrPollTimeout       = errors.New("read operation timed out")
)

type ReadOperationResult struct {
	Status        ReadStatus     `json:"status"`
	AnalyzeResult *AnalyzeResult `json:"analyzeResult,omitempty"`
}

type AnalyzeResult struct {
	Version     string       `json:"version,omitempty"`
	ReadResults []ReadResult `json:"readResults"`
}

type ReadResult struct {
	Page  int    `json:"page"`
	Lines []Line `json:"lines"`
}

type Line struct {
	Text  string `json:"text"`
	Words []Word `json:"words"`
}

type Word struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// apiError is the error envelope the Computer Vision API returns.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
