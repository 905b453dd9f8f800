package vision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/OCRBot/internal/config"
	"github.com/akolanti/OCRBot/internal/metrics"
	"github.com/akolanti/OCRBot/pkg/logger_i"
)

type PollState int

const (
	Pending PollState = iota
	Succeeded
	Failed
	TimedOut
)

func (s PollState) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed_out"
	default:
		return "pending"
	}
}

// PollOutcome is where a Read job ended up. Text is set for Succeeded, Reason for Failed and TimedOut.
type PollOutcome struct {
	State    PollState
	Text     string
	Reason   string
	Attempts int
}

type PollerConfig struct {
	Reader      Reader
	Interval    time.Duration
	Timeout     time.Duration
	MaxAttempts int
}

type Poller struct {
	reader      Reader
	interval    time.Duration
	timeout     time.Duration
	maxAttempts int
	logger      *logger_i.Logger
}

func NewPoller(cfg PollerConfig) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = config.OCRPollInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.OCRPollTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = config.OCRMaxPollAttempts
	}
	return &Poller{
		reader:      cfg.Reader,
		interval:    cfg.Interval,
		timeout:     cfg.Timeout,
		maxAttempts: cfg.MaxAttempts,
		logger:      logger_i.NewLogger("OCR Poller"),
	}
}

// ExtractText submits image, waits for the Read job and returns its flattened text.
// Errors wrap ErrTransport, ErrRecognitionEmpty, ErrRecognitionFailed or ErrPollTimeout.
func (p *Poller) ExtractText(ctx context.Context, image []byte) (string, error) {
	log := p.logger.WithTrace(ctx)
	log.Info("Processing image", "bytes", len(image))

	location, err := p.reader.SubmitRead(ctx, image)
	if err != nil {
		log.Error("OCR submission failed", "error", err)
		return "", err
	}
	id := OperationIDFromLocation(location)
	if id == "" {
		return "", fmt.Errorf("%w: empty operation id in %q", ErrTransport, location)
	}

	outcome, err := p.Poll(ctx, id)
	if err != nil {
		log.Error("OCR polling failed", "operation", id, "error", err)
		return "", err
	}

	switch outcome.State {
	case Succeeded:
		if outcome.Text == "" {
			log.Warn("OCR finished without text", "operation", id)
			return "", ErrRecognitionEmpty
		}
		return outcome.Text, nil
	case Failed:
		log.Error("OCR operation failed", "operation", id, "reason", outcome.Reason)
		return "", fmt.Errorf("%w: %s", ErrRecognitionFailed, outcome.Reason)
	default:
		log.Error("OCR operation did not finish", "operation", id, "attempts", outcome.Attempts)
		return "", fmt.Errorf("%w: %s", ErrPollTimeout, outcome.Reason)
	}
}

// Poll asks for the job status every interval until it is terminal, the deadline passes
// or maxAttempts status requests have been made. Only transport failures return an error.
func (p *Poller) Poll(ctx context.Context, id OperationID) (PollOutcome, error) {
	pollCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	outcome := PollOutcome{State: Pending}
	defer func() {
		metrics.CaptureExecutionMetrics("ocr_poll", time.Since(start))
		metrics.CaptureOCRPollIterations(outcome.Attempts)
	}()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-pollCtx.Done():
			outcome.State = TimedOut
			outcome.Reason = fmt.Sprintf("no terminal status after %s", time.Since(start).Round(time.Millisecond))
			return outcome, nil
		case <-timer.C:
		}

		outcome.Attempts++

		result, err := p.reader.GetReadResult(pollCtx, id)
		if err != nil {
			if pollCtx.Err() != nil {
				outcome.State = TimedOut
				outcome.Reason = pollCtx.Err().Error()
				return outcome, nil
			}
			return outcome, err
		}

		switch result.Status {
		case StatusSucceeded:
			outcome.State = Succeeded
			outcome.Text = Flatten(result.AnalyzeResult)
			return outcome, nil
		case StatusFailed:
			outcome.State = Failed
			outcome.Reason = "read operation reported status failed"
			return outcome, nil
		}

		if outcome.Attempts >= p.maxAttempts {
			outcome.State = TimedOut
			outcome.Reason = fmt.Sprintf("no terminal status after %d attempts", outcome.Attempts)
			return outcome, nil
		}
		timer.Reset(p.interval)
	}
}

// Flatten joins words with a space and lines with a newline across every page, then trims.
func Flatten(result *AnalyzeResult) string {
	if result == nil {
		return ""
	}
	var sb strings.Builder
	for _, page := range result.ReadResults {
		for _, line := range page.Lines {
			words := make([]string, 0, len(line.Words))
			for _, w := range line.Words {
				words = append(words, w.Text)
			}
			sb.WriteString(strings.Join(words, " "))
			sb.WriteByte('\n')
		}
	}
	return strings.TrimSpace(sb.String())
}
