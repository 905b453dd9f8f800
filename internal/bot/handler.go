package bot

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/akolanti/OCRBot/internal/config"
	"github.com/akolanti/OCRBot/internal/domain/botModel"
	"github.com/akolanti/OCRBot/internal/domain/turnModel"
	"github.com/akolanti/OCRBot/internal/pipeline"
	"github.com/akolanti/OCRBot/pkg/logger_i"
)

type Sender interface {
	SendActivity(ctx context.Context, a botModel.Activity) (string, error)
	SendTrace(ctx context.Context, inbound botModel.Activity, value any) error
}

type Pipeline interface {
	Run(ctx context.Context, att botModel.Attachment, reply pipeline.Replier, onStep func(turnModel.Step)) (turnModel.Outcome, error)
}

// Handler routes inbound activities: attachments go through the pipeline,
// new members get a welcome, everything else is acknowledged and dropped.
type Handler struct {
	sender   Sender
	pipeline Pipeline
	logger   *logger_i.Logger
}

func NewHandler(sender Sender, p Pipeline) *Handler {
	return &Handler{
		sender:   sender,
		pipeline: p,
		logger:   logger_i.NewLogger("Bot"),
	}
}

// Handle processes one activity. A panic anywhere below is returned as an error
// so the caller can run OnTurnError.
func (h *Handler) Handle(ctx context.Context, a botModel.Activity, onStep func(turnModel.Step)) (outcome turnModel.Outcome, err error) {
	log := h.logger.WithTrace(ctx)
	if onStep == nil {
		onStep = func(turnModel.Step) {}
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("Turn panicked", "panic", r, "stack", string(debug.Stack()))
			outcome, err = turnModel.OutcomeTurnError, fmt.Errorf("panic: %v", r)
		}
	}()

	onStep(turnModel.StepRoute)
	switch a.Type {
	case botModel.ActivityTypeMessage:
		return h.onMessage(ctx, a, onStep)
	case botModel.ActivityTypeConversationUpdate:
		return h.onMembersAdded(ctx, a, onStep)
	default:
		log.Debug("Ignoring activity", "type", a.Type)
		return turnModel.OutcomeIgnored, nil
	}
}

func (h *Handler) onMessage(ctx context.Context, a botModel.Activity, onStep func(turnModel.Step)) (turnModel.Outcome, error) {
	if !a.HasAttachments() {
		return turnModel.OutcomeIgnored, nil
	}
	//only the first attachment is processed
	return h.pipeline.Run(ctx, a.Attachments[0], &turnReplier{sender: h.sender, inbound: a}, onStep)
}

func (h *Handler) onMembersAdded(ctx context.Context, a botModel.Activity, onStep func(turnModel.Step)) (turnModel.Outcome, error) {
	outcome := turnModel.OutcomeIgnored
	for _, member := range a.MembersAdded {
		if member.Id == a.Recipient.Id {
			continue
		}
		onStep(turnModel.StepWelcome)
		welcome := a.Reply(config.WelcomeMessage)
		welcome.Speak = config.WelcomeMessage
		welcome.Recipient = member
		if _, err := h.sender.SendActivity(ctx, welcome); err != nil {
			return outcome, fmt.Errorf("welcome: %w", err)
		}
		outcome = turnModel.OutcomeWelcomed
	}
	return outcome, nil
}

// OnTurnError is the last resort for a failed turn: it logs, emits a trace activity
// for the emulator and tells the user something went wrong.
func (h *Handler) OnTurnError(ctx context.Context, a botModel.Activity, turnErr error) {
	log := h.logger.WithTrace(ctx)
	log.Error("Unhandled turn error", "activityId", a.Id, "error", turnErr)

	//the turn context may already be past its deadline
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.ConnectorRequestTimeout)
	defer cancel()

	if err := h.sender.SendTrace(sendCtx, a, turnErr.Error()); err != nil {
		log.Warn("Could not send trace activity", "error", err)
	}
	for _, text := range []string{config.TurnErrorMessage, config.TurnErrorFixMessage} {
		if _, err := h.sender.SendActivity(sendCtx, a.Reply(text)); err != nil {
			log.Warn("Could not send turn error message", "error", err)
			return
		}
	}
}

type turnReplier struct {
	sender  Sender
	inbound botModel.Activity
}

func (r *turnReplier) SendText(ctx context.Context, text string) error {
	_, err := r.sender.SendActivity(ctx, r.inbound.Reply(text))
	return err
}
