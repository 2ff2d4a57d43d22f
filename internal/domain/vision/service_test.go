package vision

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"travelbro-server/internal/domain/llm"
	"travelbro-server/internal/infrastructure/metrics"
)

type stubProvider struct {
	reply string
	err   error
}

func (s *stubProvider) CreateChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.ChatCompletionResponse{
		Choices: []llm.ChatCompletionChoice{{Message: llm.ChatMessage{Role: "assistant", Content: s.reply}}},
		Usage:   &llm.Usage{PromptTokens: 900, CompletionTokens: 150, TotalTokens: 1050},
	}, nil
}

type stubLogs struct {
	entries []LogEntry
}

func (s *stubLogs) AppendVisionLog(ctx context.Context, entry *LogEntry) error {
	s.entries = append(s.entries, *entry)
	return nil
}

type stubCosts struct {
	total float64
}

func (s *stubCosts) AddVisionCost(ctx context.Context, tripID string, eur float64) error {
	s.total += eur
	return nil
}

const structuredLandmarkReply = `{
	"user_message": "Dit is de Sagrada Família, de beroemde basiliek van Gaudí.",
	"identified_location": {"name": "Sagrada Família", "city": "Barcelona", "country": "Spanje", "description": "Basiliek"},
	"detected_objects": ["basiliek", "torens"],
	"categories": ["landmark"],
	"confidence_level": 0.92
}`

func TestAnalyzeRecordsIdentifiedLocation(t *testing.T) {
	logs := &stubLogs{}
	costs := &stubCosts{}
	svc := NewService(&stubProvider{reply: structuredLandmarkReply}, logs, costs, "gpt-4o", zerolog.Nop())

	successBefore := testutil.ToFloat64(metrics.VisionCallsTotal.WithLabelValues("success"))

	analysis, err := svc.Analyze(context.Background(), "sess-1", "trip-1", "att-1", "https://img.example/1.jpg", "waar is dit?", "")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if analysis.LocationName != "Sagrada Família" {
		t.Errorf("LocationName = %q, want Sagrada Família", analysis.LocationName)
	}
	wantLabel := "Sagrada Família, Barcelona, Spanje"
	if !strings.Contains(analysis.Description, wantLabel) {
		t.Errorf("Description does not carry the identified place:\n%s", analysis.Description)
	}

	if len(logs.entries) != 1 {
		t.Fatalf("vision log entries = %d, want 1", len(logs.entries))
	}
	if logs.entries[0].Location != wantLabel {
		t.Errorf("log Location = %q, want %q", logs.entries[0].Location, wantLabel)
	}
	if costs.total <= 0 {
		t.Errorf("vision cost not tracked, total = %f", costs.total)
	}

	successAfter := testutil.ToFloat64(metrics.VisionCallsTotal.WithLabelValues("success"))
	if successAfter-successBefore != 1 {
		t.Errorf("vision success counter delta = %f, want 1", successAfter-successBefore)
	}
}

func TestAnalyzeFailureCounted(t *testing.T) {
	logs := &stubLogs{}
	svc := NewService(&stubProvider{err: errors.New("upstream timeout")}, logs, &stubCosts{}, "gpt-4o", zerolog.Nop())

	failureBefore := testutil.ToFloat64(metrics.VisionCallsTotal.WithLabelValues("failure"))

	_, err := svc.Analyze(context.Background(), "sess-1", "trip-1", "att-1", "https://img.example/1.jpg", "", "")
	if err == nil {
		t.Fatal("Analyze() expected error")
	}
	if len(logs.entries) != 0 {
		t.Errorf("no vision log expected on provider failure, got %d", len(logs.entries))
	}

	failureAfter := testutil.ToFloat64(metrics.VisionCallsTotal.WithLabelValues("failure"))
	if failureAfter-failureBefore != 1 {
		t.Errorf("vision failure counter delta = %f, want 1", failureAfter-failureBefore)
	}
}

func TestParseReplyFoldsLocationOnce(t *testing.T) {
	analysis := parseReply(structuredLandmarkReply)
	if got := strings.Count(analysis.Description, "Sagrada Família"); got != 2 {
		// Once in the model's own sentence, once in the appended place line.
		t.Errorf("Sagrada Família occurrences = %d, want 2", got)
	}
	if analysis.LocationCity != "Barcelona" || analysis.LocationCountry != "Spanje" {
		t.Errorf("location fields = %q/%q", analysis.LocationCity, analysis.LocationCountry)
	}
}

func TestParseReplyFreeTextFallback(t *testing.T) {
	raw := "Een menukaart met tapas en prijzen in euro's."
	analysis := parseReply(raw)
	if analysis.Description != raw {
		t.Errorf("Description = %q, want raw text", analysis.Description)
	}
	if analysis.LocationName != "" {
		t.Errorf("LocationName = %q, want empty", analysis.LocationName)
	}
}
