package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type MockProvider struct {
	OnStreamChat func(ctx context.Context, messages []Message, maxTokens int64) (DeltaStream, error)
	gotMessages  []Message
	gotMax       int64
}

func (m *MockProvider) StreamChat(ctx context.Context, messages []Message, maxTokens int64) (DeltaStream, error) {
	m.gotMessages = messages
	m.gotMax = maxTokens
	return m.OnStreamChat(ctx, messages, maxTokens)
}

func TestAccumulate(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		want   string
	}{
		{
			name: "Ordered_Deltas",
			events: []Event{
				{Choices: []Choice{{Delta: Text("Trans")}}},
				{Choices: []Choice{{Delta: Text("lation")}}},
				{Choices: []Choice{{Delta: Text(": X")}}},
			},
			want: "Translation: X",
		},
		{
			name: "Absent_Deltas_Skipped",
			events: []Event{
				{Choices: []Choice{}},
				{Choices: []Choice{{Delta: nil}}},
				{Choices: []Choice{{Delta: Text("a")}, {Index: 1, Delta: nil}, {Index: 2, Delta: Text("b")}}},
				{Choices: []Choice{{Delta: Text("")}}},
			},
			want: "ab",
		},
		{
			name: "No_Events",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accumulate(NewSliceStream(tt.events, nil))
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummarize_Scenarios(t *testing.T) {
	streamErr := errors.New("quota exceeded")
	tests := []struct {
		name  string
		open  func() (DeltaStream, error)
		want  string
		isErr bool
	}{
		{
			name: "Success",
			open: func() (DeltaStream, error) {
				return NewSliceStream([]Event{{Choices: []Choice{{Delta: Text("Trans")}}}, {Choices: []Choice{{Delta: Text("lation: X")}}}}, nil), nil
			},
			want: "Translation: X",
		},
		{
			name:  "Open_Error",
			open:  func() (DeltaStream, error) { return nil, errors.New("auth") },
			want:  "翻訳または要約に失敗しました。",
			isErr: true,
		},
		{
			name: "Mid_Stream_Error",
			open: func() (DeltaStream, error) {
				return NewSliceStream([]Event{{Choices: []Choice{{Delta: Text("partial")}}}}, streamErr), nil
			},
			want:  "翻訳または要約に失敗しました。",
			isErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &MockProvider{OnStreamChat: func(ctx context.Context, m []Message, max int64) (DeltaStream, error) {
				return tt.open()
			}}
			svc := NewService(Config{Provider: p})

			if got := svc.Summarize(context.Background(), "HELLO WORLD"); got != tt.want {
				t.Errorf("Summarize got %q, want %q", got, tt.want)
			}
			_, err := svc.TrySummarize(context.Background(), "HELLO WORLD")
			if tt.isErr != errors.Is(err, ErrCompletion) {
				t.Errorf("TrySummarize error got %v", err)
			}
		})
	}
}

func TestSummarize_Messages(t *testing.T) {
	stream := NewSliceStream(nil, nil)
	p := &MockProvider{OnStreamChat: func(ctx context.Context, m []Message, max int64) (DeltaStream, error) {
		return stream, nil
	}}
	NewService(Config{Provider: p, MaxTokens: 64}).Summarize(context.Background(), "HELLO WORLD\nFOO BAR")

	if len(p.gotMessages) != 2 {
		t.Fatalf("expected exactly 2 messages, got %d", len(p.gotMessages))
	}
	if p.gotMessages[0].Role != RoleSystem || p.gotMessages[0].Content != "あなたは翻訳と要約が得意なアシスタントです。" {
		t.Errorf("system message got %+v", p.gotMessages[0])
	}
	user := p.gotMessages[1]
	if user.Role != RoleUser || !strings.HasSuffix(user.Content, ":\n\nHELLO WORLD\nFOO BAR") {
		t.Errorf("user message got %+v", user)
	}
	if p.gotMax != 64 {
		t.Errorf("max tokens got %d", p.gotMax)
	}
	if !stream.Closed() {
		t.Error("stream was not closed")
	}
}
