package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/akolanti/OCRBot/internal/config"
	"github.com/akolanti/OCRBot/internal/domain/botModel"
	"github.com/akolanti/OCRBot/internal/domain/turnModel"
	"github.com/akolanti/OCRBot/internal/fetcher"
	"github.com/akolanti/OCRBot/internal/summarizer"
	"github.com/akolanti/OCRBot/internal/vision"
)

type MockFetcher struct {
	OnFetch func(ctx context.Context, url string) ([]byte, error)
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return m.OnFetch(ctx, url)
}

type MockRecognizer struct {
	OnExtract func(ctx context.Context, image []byte) (string, error)
	calls     int
}

func (m *MockRecognizer) ExtractText(ctx context.Context, image []byte) (string, error) {
	m.calls++
	return m.OnExtract(ctx, image)
}

type MockDocuments struct {
	OnExtract func(ctx context.Context, data []byte, contentType, name string) (string, error)
	calls     int
}

func (m *MockDocuments) Extract(ctx context.Context, data []byte, contentType, name string) (string, error) {
	m.calls++
	return m.OnExtract(ctx, data, contentType, name)
}

type MockSummarizer struct {
	OnSummarize func(ctx context.Context, text string) string
	calls       int
}

func (m *MockSummarizer) Summarize(ctx context.Context, text string) string {
	m.calls++
	return m.OnSummarize(ctx, text)
}

type recordingReplier struct {
	sent    []string
	failAt  int
	sendErr error
}

func (r *recordingReplier) SendText(_ context.Context, text string) error {
	if r.sendErr != nil && len(r.sent)+1 == r.failAt {
		return r.sendErr
	}
	r.sent = append(r.sent, text)
	return nil
}

var image = botModel.Attachment{ContentType: "image/png", ContentUrl: "https://files.example/a.png", Name: "a.png"}

func TestRun_StageFailures(t *testing.T) {
	tests := []struct {
		name         string
		fetchErr     error
		ocrErr       error
		wantOutcome  turnModel.Outcome
		wantMessage  string
		wantOCRCalls int
		wantSteps    []turnModel.Step
	}{
		{
			name:         "Download_Failed",
			fetchErr:     fmt.Errorf("%w: status 404", fetcher.ErrTransport),
			wantOutcome:  turnModel.OutcomeDownloadFailed,
			wantMessage:  config.DownloadFailedMessage,
			wantOCRCalls: 0,
			wantSteps:    []turnModel.Step{turnModel.StepFetch},
		},
		{
			name:         "Nothing_Recognized",
			ocrErr:       vision.ErrRecognitionEmpty,
			wantOutcome:  turnModel.OutcomeNotRecognized,
			wantMessage:  config.NotRecognizedMessage,
			wantOCRCalls: 1,
			wantSteps:    []turnModel.Step{turnModel.StepFetch, turnModel.StepOCR},
		},
		{
			name:         "Vision_Unreachable",
			ocrErr:       fmt.Errorf("%w: dial tcp", vision.ErrTransport),
			wantOutcome:  turnModel.OutcomeNotRecognized,
			wantMessage:  config.NotRecognizedMessage,
			wantOCRCalls: 1,
			wantSteps:    []turnModel.Step{turnModel.StepFetch, turnModel.StepOCR},
		},
		{
			name:         "Read_Job_Failed",
			ocrErr:       fmt.Errorf("%w: status failed", vision.ErrRecognitionFailed),
			wantOutcome:  turnModel.OutcomeOCRFailed,
			wantMessage:  config.OCRProcessingError,
			wantOCRCalls: 1,
			wantSteps:    []turnModel.Step{turnModel.StepFetch, turnModel.StepOCR},
		},
		{
			name:         "Read_Job_Timed_Out",
			ocrErr:       fmt.Errorf("%w: 120 attempts", vision.ErrPollTimeout),
			wantOutcome:  turnModel.OutcomeOCRFailed,
			wantMessage:  config.OCRProcessingError,
			wantOCRCalls: 1,
			wantSteps:    []turnModel.Step{turnModel.StepFetch, turnModel.StepOCR},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &MockFetcher{OnFetch: func(ctx context.Context, url string) ([]byte, error) {
				if tt.fetchErr != nil {
					return nil, tt.fetchErr
				}
				return []byte("B"), nil
			}}
			r := &MockRecognizer{OnExtract: func(ctx context.Context, image []byte) (string, error) {
				return "", tt.ocrErr
			}}
			s := &MockSummarizer{OnSummarize: func(ctx context.Context, text string) string { return "x" }}
			reply := &recordingReplier{}
			var steps []turnModel.Step

			p := New(Config{Fetcher: f, Recognizer: r, Summarizer: s})
			outcome, err := p.Run(context.Background(), image, reply, func(step turnModel.Step) { steps = append(steps, step) })

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if outcome != tt.wantOutcome {
				t.Errorf("outcome = %s; want %s", outcome, tt.wantOutcome)
			}
			if !reflect.DeepEqual(reply.sent, []string{tt.wantMessage}) {
				t.Errorf("sent %q; want exactly %q", reply.sent, tt.wantMessage)
			}
			if r.calls != tt.wantOCRCalls {
				t.Errorf("OCR called %d times; want %d", r.calls, tt.wantOCRCalls)
			}
			if s.calls != 0 {
				t.Errorf("summarizer must not run after a failed stage, ran %d times", s.calls)
			}
			if !reflect.DeepEqual(steps, tt.wantSteps) {
				t.Errorf("steps %v; want %v", steps, tt.wantSteps)
			}
		})
	}
}

func TestRun_Success(t *testing.T) {
	f := &MockFetcher{OnFetch: func(ctx context.Context, url string) ([]byte, error) {
		if url != image.ContentUrl {
			t.Errorf("fetched %s", url)
		}
		return []byte("B"), nil
	}}
	r := &MockRecognizer{OnExtract: func(ctx context.Context, img []byte) (string, error) {
		if !bytes.Equal(img, []byte("B")) {
			t.Errorf("OCR got %q", img)
		}
		return "HELLO WORLD\nFOO BAR", nil
	}}
	s := &MockSummarizer{OnSummarize: func(ctx context.Context, text string) string {
		if text != "HELLO WORLD\nFOO BAR" {
			t.Errorf("summarizer got %q", text)
		}
		return "Translation: X"
	}}
	reply := &recordingReplier{}

	outcome, err := New(Config{Fetcher: f, Recognizer: r, Summarizer: s}).Run(context.Background(), image, reply, nil)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != turnModel.OutcomeReplied {
		t.Errorf("outcome = %s", outcome)
	}
	want := []string{"OCR結果:\nHELLO WORLD\nFOO BAR", "\nTranslation: X"}
	if !reflect.DeepEqual(reply.sent, want) {
		t.Errorf("sent %q; want %q", reply.sent, want)
	}
}

func TestRun_SummaryFallbackStillReplies(t *testing.T) {
	f := &MockFetcher{OnFetch: func(ctx context.Context, url string) ([]byte, error) { return []byte("B"), nil }}
	r := &MockRecognizer{OnExtract: func(ctx context.Context, img []byte) (string, error) { return "TEXT", nil }}
	failing := summarizer.NewService(summarizer.Config{Provider: providerFunc(func() (summarizer.DeltaStream, error) {
		return nil, errors.New("429 too many requests")
	})})
	reply := &recordingReplier{}

	if _, err := New(Config{Fetcher: f, Recognizer: r, Summarizer: failing}).Run(context.Background(), image, reply, nil); err != nil {
		t.Fatal(err)
	}
	want := []string{"OCR結果:\nTEXT", "\n" + config.SummaryFallbackMessage}
	if !reflect.DeepEqual(reply.sent, want) {
		t.Errorf("sent %q; want %q", reply.sent, want)
	}
}

func TestRun_ReplyFailure(t *testing.T) {
	f := &MockFetcher{OnFetch: func(ctx context.Context, url string) ([]byte, error) { return []byte("B"), nil }}
	r := &MockRecognizer{OnExtract: func(ctx context.Context, img []byte) (string, error) { return "TEXT", nil }}
	s := &MockSummarizer{OnSummarize: func(ctx context.Context, text string) string { return "S" }}
	sendErr := errors.New("connector down")
	reply := &recordingReplier{failAt: 2, sendErr: sendErr}

	_, err := New(Config{Fetcher: f, Recognizer: r, Summarizer: s}).Run(context.Background(), image, reply, nil)
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected the send error, got %v", err)
	}
	if len(reply.sent) != 1 {
		t.Errorf("expected only the OCR message to go out, got %q", reply.sent)
	}
}

func TestRun_DocumentSkipsOCR(t *testing.T) {
	f := &MockFetcher{OnFetch: func(ctx context.Context, url string) ([]byte, error) { return []byte("%PDF"), nil }}
	r := &MockRecognizer{OnExtract: func(ctx context.Context, img []byte) (string, error) { return "", nil }}
	d := &MockDocuments{OnExtract: func(ctx context.Context, data []byte, contentType, name string) (string, error) {
		return "PAGE ONE", nil
	}}
	s := &MockSummarizer{OnSummarize: func(ctx context.Context, text string) string { return "S" }}
	reply := &recordingReplier{}
	var steps []turnModel.Step

	pdf := botModel.Attachment{ContentType: "application/pdf", ContentUrl: "https://files.example/a.pdf", Name: "a.pdf"}
	p := New(Config{Fetcher: f, Recognizer: r, Documents: d, Summarizer: s})
	if _, err := p.Run(context.Background(), pdf, reply, func(step turnModel.Step) { steps = append(steps, step) }); err != nil {
		t.Fatal(err)
	}
	if r.calls != 0 || d.calls != 1 {
		t.Errorf("OCR calls %d, document calls %d", r.calls, d.calls)
	}
	if reply.sent[0] != "OCR結果:\nPAGE ONE" {
		t.Errorf("sent %q", reply.sent)
	}
	want := []turnModel.Step{turnModel.StepFetch, turnModel.StepDocument, turnModel.StepSummarize, turnModel.StepReply}
	if !reflect.DeepEqual(steps, want) {
		t.Errorf("steps %v; want %v", steps, want)
	}
}

type providerFunc func() (summarizer.DeltaStream, error)

func (f providerFunc) StreamChat(ctx context.Context, messages []summarizer.Message, maxTokens int64) (summarizer.DeltaStream, error) {
	return f()
}

type fakeVision struct {
	statuses []vision.ReadOperationResult
	polls    int
}

func (v *fakeVision) SubmitRead(ctx context.Context, image []byte) (string, error) {
	if !bytes.Equal(image, []byte("B")) {
		return "", fmt.Errorf("%w: unexpected image", vision.ErrTransport)
	}
	return "https://vision.example/vision/v3.2/read/analyzeResults/op-1", nil
}

func (v *fakeVision) GetReadResult(ctx context.Context, id vision.OperationID) (vision.ReadOperationResult, error) {
	i := v.polls
	if i >= len(v.statuses) {
		i = len(v.statuses) - 1
	}
	v.polls++
	return v.statuses[i], nil
}

func words(ws ...string) vision.Line {
	l := vision.Line{}
	for _, w := range ws {
		l.Words = append(l.Words, vision.Word{Text: w})
	}
	return l
}

func TestRun_EndToEnd(t *testing.T) {
	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("B"))
	}))
	defer files.Close()

	fv := &fakeVision{statuses: []vision.ReadOperationResult{
		{Status: vision.StatusRunning},
		{Status: vision.StatusSucceeded, AnalyzeResult: &vision.AnalyzeResult{ReadResults: []vision.ReadResult{
			{Page: 1, Lines: []vision.Line{words("HELLO", "WORLD"), words("FOO", "BAR")}},
		}}},
	}}
	poller := vision.NewPoller(vision.PollerConfig{Reader: fv, Interval: time.Millisecond, Timeout: time.Second, MaxAttempts: 10})

	var gotMessages []summarizer.Message
	provider := summarizerProvider(func(messages []summarizer.Message) (summarizer.DeltaStream, error) {
		gotMessages = messages
		return summarizer.NewSliceStream([]summarizer.Event{
			{Choices: []summarizer.Choice{{Delta: summarizer.Text("Trans")}}},
			{Choices: []summarizer.Choice{{Delta: nil}}},
			{Choices: []summarizer.Choice{{Delta: summarizer.Text("lation")}}},
			{Choices: []summarizer.Choice{{Delta: summarizer.Text(": X")}}},
		}, nil), nil
	})

	p := New(Config{
		Fetcher:    fetcher.New(fetcher.Config{Client: files.Client()}),
		Recognizer: poller,
		Summarizer: summarizer.NewService(summarizer.Config{Provider: provider}),
	})
	reply := &recordingReplier{}
	att := botModel.Attachment{ContentType: "image/png", ContentUrl: files.URL + "/image.png"}

	outcome, err := p.Run(context.Background(), att, reply, nil)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != turnModel.OutcomeReplied {
		t.Errorf("outcome = %s", outcome)
	}
	want := []string{"OCR結果:\nHELLO WORLD\nFOO BAR", "\nTranslation: X"}
	if !reflect.DeepEqual(reply.sent, want) {
		t.Errorf("sent %q; want %q", reply.sent, want)
	}
	if len(gotMessages) != 2 || gotMessages[1].Content != config.TaskInstruction+"HELLO WORLD\nFOO BAR" {
		t.Errorf("unexpected completion messages %+v", gotMessages)
	}
}

func TestRun_EndToEnd_NeverSucceeds(t *testing.T) {
	fv := &fakeVision{statuses: []vision.ReadOperationResult{{Status: vision.StatusRunning}}}
	poller := vision.NewPoller(vision.PollerConfig{Reader: fv, Interval: time.Millisecond, Timeout: time.Second, MaxAttempts: 5})
	f := &MockFetcher{OnFetch: func(ctx context.Context, url string) ([]byte, error) { return []byte("B"), nil }}
	s := &MockSummarizer{OnSummarize: func(ctx context.Context, text string) string { return "S" }}
	reply := &recordingReplier{}

	outcome, err := New(Config{Fetcher: f, Recognizer: poller, Summarizer: s}).Run(context.Background(), image, reply, nil)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != turnModel.OutcomeOCRFailed || fv.polls != 5 {
		t.Errorf("outcome %s after %d polls", outcome, fv.polls)
	}
	if !reflect.DeepEqual(reply.sent, []string{config.OCRProcessingError}) {
		t.Errorf("sent %q", reply.sent)
	}
}

type summarizerProvider func(messages []summarizer.Message) (summarizer.DeltaStream, error)

func (f summarizerProvider) StreamChat(ctx context.Context, messages []summarizer.Message, maxTokens int64) (summarizer.DeltaStream, error) {
	return f(messages)
}

type liveContextReplier struct {
	recordingReplier
	deadCtx int
}

func (r *liveContextReplier) SendText(ctx context.Context, text string) error {
	if ctx.Err() != nil {
		r.deadCtx++
	}
	return r.recordingReplier.SendText(ctx, text)
}

func TestRun_CancelledTurnStillReplies(t *testing.T) {
	fv := &fakeVision{statuses: []vision.ReadOperationResult{{Status: vision.StatusRunning}}}
	poller := vision.NewPoller(vision.PollerConfig{Reader: fv, Interval: 10 * time.Millisecond, Timeout: time.Minute, MaxAttempts: 1000})
	ctx, cancel := context.WithCancel(context.Background())
	f := &MockFetcher{OnFetch: func(ctx context.Context, url string) ([]byte, error) { return []byte("B"), nil }}
	s := &MockSummarizer{OnSummarize: func(ctx context.Context, text string) string { return "S" }}
	reply := &liveContextReplier{}

	time.AfterFunc(30*time.Millisecond, cancel)
	outcome, err := New(Config{Fetcher: f, Recognizer: poller, Summarizer: s}).Run(ctx, image, reply, nil)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != turnModel.OutcomeOCRFailed {
		t.Errorf("outcome %s; want %s", outcome, turnModel.OutcomeOCRFailed)
	}
	if !reflect.DeepEqual(reply.sent, []string{config.OCRProcessingError}) {
		t.Errorf("sent %q", reply.sent)
	}
	if reply.deadCtx != 0 {
		t.Error("reply was sent on a cancelled context")
	}
}
