package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/OCRBot/internal/config"
	"github.com/akolanti/OCRBot/internal/document"
	"github.com/akolanti/OCRBot/internal/domain/botModel"
	"github.com/akolanti/OCRBot/internal/domain/turnModel"
	"github.com/akolanti/OCRBot/internal/metrics"
	"github.com/akolanti/OCRBot/internal/vision"
	"github.com/akolanti/OCRBot/pkg/logger_i"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type TextRecognizer interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

type DocumentExtractor interface {
	Extract(ctx context.Context, data []byte, contentType, name string) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) string
}

// Replier sends a plain text message back into the conversation of the current turn.
type Replier interface {
	SendText(ctx context.Context, text string) error
}

type Config struct {
	Fetcher    Fetcher
	Recognizer TextRecognizer
	Documents  DocumentExtractor
	Summarizer Summarizer
}

// Pipeline turns one attachment into two replies: the recognized text and its translation/summary.
type Pipeline struct {
	fetcher    Fetcher
	recognizer TextRecognizer
	documents  DocumentExtractor
	summarizer Summarizer
	logger     *logger_i.Logger
}

func New(cfg Config) *Pipeline {
	return &Pipeline{
		fetcher:    cfg.Fetcher,
		recognizer: cfg.Recognizer,
		documents:  cfg.Documents,
		summarizer: cfg.Summarizer,
		logger:     logger_i.NewLogger("Pipeline"),
	}
}

// Run walks Fetch, OCR (or document extraction), Summarize and Reply.
// Stage failures end the run with their user message and are reported through the outcome;
// the returned error is only set when a reply could not be sent.
func (p *Pipeline) Run(ctx context.Context, att botModel.Attachment, reply Replier, onStep func(turnModel.Step)) (outcome turnModel.Outcome, err error) {
	log := p.logger.WithTrace(ctx)
	if onStep == nil {
		onStep = func(turnModel.Step) {}
	}
	defer func() {
		if err == nil {
			metrics.CountPipelineOutcome(string(outcome))
		}
	}()

	onStep(turnModel.StepFetch)
	data, err := p.fetcher.Fetch(ctx, att.ContentUrl)
	if err != nil {
		log.Warn("Attachment download failed", "error", err)
		return turnModel.OutcomeDownloadFailed, p.send(ctx, reply, config.DownloadFailedMessage)
	}

	text, err := p.recognize(ctx, att, data, onStep)
	if err != nil {
		log.Warn("No text recognized", "error", err)
		outcome, message := failureMessage(err)
		return outcome, p.send(ctx, reply, message)
	}

	onStep(turnModel.StepSummarize)
	summary := p.summarizer.Summarize(ctx, text)

	onStep(turnModel.StepReply)
	if err := p.send(ctx, reply, config.OCRResultPrefix+text); err != nil {
		return turnModel.OutcomeReplied, err
	}
	if err := p.send(ctx, reply, config.SummaryPrefix+summary); err != nil {
		return turnModel.OutcomeReplied, err
	}
	log.Info("Attachment processed", "chars", len(text))
	return turnModel.OutcomeReplied, nil
}

func (p *Pipeline) recognize(ctx context.Context, att botModel.Attachment, data []byte, onStep func(turnModel.Step)) (string, error) {
	if p.documents != nil && document.Classify(att.ContentType, att.Name) != document.KindImage {
		onStep(turnModel.StepDocument)
		return p.documents.Extract(ctx, data, att.ContentType, att.Name)
	}
	onStep(turnModel.StepOCR)
	return p.recognizer.ExtractText(ctx, data)
}

// failureMessage picks the reply for a recognition error. A job the vision service
// failed or never finished is a processing error, everything else reads as "no text".
func failureMessage(err error) (turnModel.Outcome, string) {
	switch {
	case errors.Is(err, vision.ErrRecognitionFailed), errors.Is(err, vision.ErrPollTimeout):
		return turnModel.OutcomeOCRFailed, config.OCRProcessingError
	default:
		return turnModel.OutcomeNotRecognized, config.NotRecognizedMessage
	}
}

// send still delivers once the turn is cancelled or past its deadline, the user gets an answer
// for whatever stage the turn reached.
func (p *Pipeline) send(ctx context.Context, reply Replier, text string) error {
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), config.ConnectorRequestTimeout)
		defer cancel()
	}
	if err := reply.SendText(ctx, text); err != nil {
		return fmt.Errorf("reply: %w", err)
	}
	return nil
}
