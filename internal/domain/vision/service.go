package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"travelbro-server/internal/domain/llm"
	"travelbro-server/internal/infrastructure/metrics"
	"travelbro-server/internal/infrastructure/observability"
)

// LogEntry is the audit row written for every vision invocation, including
// invocations whose parent turn later fails downstream.
type LogEntry struct {
	SessionToken string
	TripID       string
	AttachmentID string
	Prompt       string
	Response     string
	Confidence   float64
	Categories   []string
	Location     string
	Model        string
	TokensUsed   int
	CostEUR      float64
	LatencyMS    int64
}

// Repository appends vision audit rows.
type Repository interface {
	AppendVisionLog(ctx context.Context, entry *LogEntry) error
}

// CostTracker increments the running vision spend for a trip.
type CostTracker interface {
	AddVisionCost(ctx context.Context, tripID string, eur float64) error
}

// Service is the vision adapter: it sends the image plus a specialized
// prompt to an image-capable model, parses the reply, and records cost.
type Service struct {
	provider llm.Provider
	logs     Repository
	costs    CostTracker
	model    string
	log      zerolog.Logger
}

// NewService wires the vision adapter.
func NewService(provider llm.Provider, logs Repository, costs CostTracker, model string, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		logs:     logs,
		costs:    costs,
		model:    model,
		log:      log.With().Str("component", "vision").Logger(),
	}
}

// structuredReply is the JSON shape the vision prompt instructs the model
// to produce.
type structuredReply struct {
	UserMessage        string `json:"user_message"`
	IdentifiedLocation *struct {
		Name        string `json:"name"`
		City        string `json:"city"`
		Country     string `json:"country"`
		Description string `json:"description"`
	} `json:"identified_location"`
	DetectedObjects []string `json:"detected_objects"`
	Categories      []string `json:"categories"`
	ConfidenceLevel float64  `json:"confidence_level"`
	UncertaintyNote string   `json:"uncertainty_note"`
}

// Analyze runs one image-understanding call. The vision log and the trip
// cost increment happen before returning, even on parse trouble, because
// the model call has already been billed.
func (s *Service) Analyze(ctx context.Context, sessionToken, tripID, attachmentID, imageURL, userMessage, tripContext string) (*Analysis, error) {
	start := time.Now()
	prompt := buildPrompt(userMessage, tripContext)

	ctx, span := observability.StartVisionSpan(ctx, tripID)
	defer span.End()

	temperature := 0.2
	maxTokens := 1000
	resp, err := s.provider.CreateChatCompletion(ctx, llm.ChatCompletionRequest{
		Model: s.model,
		Messages: []llm.ChatMessage{{
			Role: "user",
			Content: []llm.ContentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &llm.ImageURL{URL: imageURL, Detail: DetailLevel(userMessage)}},
			},
		}},
		Temperature:    &temperature,
		MaxTokens:      &maxTokens,
		ResponseFormat: &llm.ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		metrics.RecordVisionCall("failure")
		wrapped := fmt.Errorf("vision completion: %w", err)
		observability.RecordError(span, wrapped)
		return nil, wrapped
	}
	if len(resp.Choices) == 0 {
		metrics.RecordVisionCall("failure")
		wrapped := fmt.Errorf("vision completion returned no choices")
		observability.RecordError(span, wrapped)
		return nil, wrapped
	}
	metrics.RecordVisionCall("success")

	raw := resp.Choices[0].Message.Text()
	analysis := parseReply(raw)
	analysis.LatencyMS = time.Since(start).Milliseconds()
	if resp.Usage != nil {
		analysis.PromptTokens = resp.Usage.PromptTokens
		analysis.CompletionTokens = resp.Usage.CompletionTokens
		analysis.TotalTokens = resp.Usage.TotalTokens
	}
	analysis.CostEUR = llm.CostEUR(analysis.PromptTokens, analysis.CompletionTokens)

	if err := s.logs.AppendVisionLog(ctx, &LogEntry{
		SessionToken: sessionToken,
		TripID:       tripID,
		AttachmentID: attachmentID,
		Prompt:       prompt,
		Response:     raw,
		Confidence:   analysis.Confidence,
		Categories:   analysis.Categories,
		Location:     analysis.LocationLabel(),
		Model:        s.model,
		TokensUsed:   analysis.TotalTokens,
		CostEUR:      analysis.CostEUR,
		LatencyMS:    analysis.LatencyMS,
	}); err != nil {
		s.log.Error().Err(err).Str("trip_id", tripID).Msg("append vision log")
	}
	if err := s.costs.AddVisionCost(ctx, tripID, analysis.CostEUR); err != nil {
		s.log.Error().Err(err).Str("trip_id", tripID).Msg("track vision cost")
	}

	return analysis, nil
}

func parseReply(raw string) *Analysis {
	var reply structuredReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil || reply.UserMessage == "" {
		// Free-text fallback: sniff categories and score heuristically.
		return &Analysis{
			Description: raw,
			Categories:  SniffCategories(raw),
			Confidence:  HeuristicConfidence(raw),
		}
	}

	description := reply.UserMessage
	if reply.UncertaintyNote != "" {
		description = fmt.Sprintf("%s\n\n⚠️ %s", description, reply.UncertaintyNote)
	}
	analysis := &Analysis{
		Description:     description,
		DetectedObjects: reply.DetectedObjects,
		Categories:      reply.Categories,
		Confidence:      reply.ConfidenceLevel,
	}
	if len(analysis.Categories) == 0 {
		analysis.Categories = SniffCategories(description)
	}
	if analysis.Confidence <= 0 {
		analysis.Confidence = HeuristicConfidence(description)
	}
	if reply.IdentifiedLocation != nil {
		analysis.LocationName = reply.IdentifiedLocation.Name
		analysis.LocationCity = reply.IdentifiedLocation.City
		analysis.LocationCountry = reply.IdentifiedLocation.Country
		if place := analysis.LocationLabel(); place != "" && !strings.Contains(analysis.Description, place) {
			analysis.Description = fmt.Sprintf("%s\n\n📍 Herkende locatie: %s", analysis.Description, place)
		}
	}
	return analysis
}

func buildPrompt(userMessage, tripContext string) string {
	var context string
	if tripContext != "" {
		context = fmt.Sprintf("REIS CONTEXT:\n%s\n\n", tripContext)
	}
	var question string
	if userMessage != "" {
		question = fmt.Sprintf("USER VRAAG: %s\n\n", userMessage)
	}

	return fmt.Sprintf(`Je bent TravelBro, een AI reisassistent met vision en locatie-herkenning.

%sAnalyseer deze afbeelding grondig en identificeer exact wat je ziet.

%sLOCATIE IDENTIFICATIE (HOOGSTE PRIORITEIT):
- Herken je een landmark, gebouw, monument of natuurgebied: noem de volledige naam, stad en land.
- Gebruik geen vage antwoorden zoals "een mooi gebouw".

ALGEMENE ANALYSE:
1. Menu: vertaal gerechten en prijzen naar Nederlands.
2. Borden/tekst: vertaal en leg uit wat er staat.
3. Natuur en architectuur: benoem specifiek wat je ziet.

Als je niet zeker bent van een locatie (confidence < 70%%): zeg dat expliciet en vraag om extra context.

OUTPUT FORMAAT (STRICT JSON):
{
  "user_message": "Volledig Nederlands antwoord voor de gebruiker",
  "identified_location": {"name": "...", "city": "...", "country": "...", "description": "..."},
  "detected_objects": ["..."],
  "categories": ["landmark" | "menu" | "signage" | "map" | "nature" | "general"],
  "confidence_level": 0.9,
  "uncertainty_note": "Optioneel bij lage zekerheid"
}

Antwoord ALLEEN in valid JSON.`, context, question)
}
