package chat

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"travelbro-server/internal/domain/conversation"
	"travelbro-server/internal/domain/intake"
	"travelbro-server/internal/domain/intent"
	"travelbro-server/internal/domain/llm"
	"travelbro-server/internal/domain/slots"
	"travelbro-server/internal/domain/tool"
	"travelbro-server/internal/domain/trip"
	"travelbro-server/internal/domain/vision"
	"travelbro-server/internal/infrastructure/metrics"
	"travelbro-server/internal/infrastructure/observability"
)

// VisionAnalyzer runs one gated image-understanding call.
type VisionAnalyzer interface {
	Analyze(ctx context.Context, sessionToken, tripID, attachmentID, imageURL, userMessage, tripContext string) (*vision.Analysis, error)
}

// AttachmentStore persists inline images to object storage and returns a
// stable public URL.
type AttachmentStore interface {
	UploadImage(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ErrSessionBusy is returned by a SessionLocker when another turn holds the
// lease for the same (session, trip) pair.
var ErrSessionBusy = errors.New("another turn is in progress for this session")

// SessionLocker serializes turns per (session, trip) so the slot
// read-merge-write of two concurrent turns cannot interleave.
type SessionLocker interface {
	Acquire(ctx context.Context, sessionToken, tripID string) (release func(), err error)
}

// Options are the per-process orchestration tunables.
type Options struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	HistoryLimit int
}

// Service is the top-level per-turn state machine. Each dependency may be
// nil when its provider is not configured; a nil tool adapter silently
// disables that one tool, a nil chat provider fails the turn with a
// configuration error.
type Service struct {
	trips       trip.Repository
	costs       trip.CostTracker
	turns       conversation.TurnRepository
	attachments conversation.AttachmentRepository
	slotStore   slots.Store
	intakes     intake.Repository
	places      tool.PlacesAdapter
	directions  tool.DirectionsAdapter
	webSearch   tool.WebSearchAdapter
	analyzer    VisionAnalyzer
	provider    llm.Provider
	audit       AuditLogger
	uploader    AttachmentStore
	locker      SessionLocker
	assembler   PromptAssembler
	formatter   Formatter
	opts        Options
	log         zerolog.Logger
}

// NewService wires the orchestrator.
func NewService(
	trips trip.Repository,
	costs trip.CostTracker,
	turns conversation.TurnRepository,
	attachments conversation.AttachmentRepository,
	slotStore slots.Store,
	intakes intake.Repository,
	places tool.PlacesAdapter,
	directions tool.DirectionsAdapter,
	webSearch tool.WebSearchAdapter,
	analyzer VisionAnalyzer,
	provider llm.Provider,
	audit AuditLogger,
	uploader AttachmentStore,
	locker SessionLocker,
	opts Options,
	log zerolog.Logger,
) *Service {
	if opts.HistoryLimit <= 0 || opts.HistoryLimit > 20 {
		opts.HistoryLimit = 20
	}
	return &Service{
		trips:       trips,
		costs:       costs,
		turns:       turns,
		attachments: attachments,
		slotStore:   slotStore,
		intakes:     intakes,
		places:      places,
		directions:  directions,
		webSearch:   webSearch,
		analyzer:    analyzer,
		provider:    provider,
		audit:       audit,
		uploader:    uploader,
		locker:      locker,
		opts:        opts,
		log:         log.With().Str("component", "chat-service").Logger(),
	}
}

// Handle runs one conversational turn. Errors are *TurnError values
// carrying the HTTP status to surface.
func (s *Service) Handle(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	// 1. Validate.
	if strings.TrimSpace(req.TripID) == "" || strings.TrimSpace(req.SessionToken) == "" {
		return nil, badRequest("tripId and sessionToken are required")
	}
	if req.Message == "" && !req.HasImage() && req.AudioBase64 == "" {
		return nil, badRequest("at least one of message, image or audio is required")
	}

	// 2. Load trip.
	currentTrip, err := s.trips.FindByID(ctx, req.TripID)
	if err != nil {
		if errors.Is(err, trip.ErrNotFound) {
			return nil, notFound("trip not found")
		}
		return nil, internal("failed to load trip", err.Error())
	}

	// 3. Guard: refuse before any paid call is made.
	if status := currentTrip.EffectiveStatus(time.Now()); status != trip.StatusActive {
		return nil, forbidden("trip is not active", currentTrip.GuardReason(status))
	}

	// Serialize turns per (session, trip); without the lease two concurrent
	// turns can silently clobber each other's slot merge.
	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, req.SessionToken, req.TripID)
		if err != nil {
			if errors.Is(err, ErrSessionBusy) {
				return nil, &TurnError{Status: http.StatusTooManyRequests, Message: ErrSessionBusy.Error()}
			}
			s.log.Warn().Err(err).Msg("session lease unavailable, continuing unguarded")
		} else {
			defer release()
		}
	}

	// 4. Ingest attachment.
	imageURL := req.ImageURL
	var attachment *conversation.Attachment
	if req.ImageBase64 != "" {
		attachment, imageURL = s.ingestAttachment(ctx, req)
	}

	// 5. Conditional vision pass; a vision failure degrades to "no vision".
	var analysis *vision.Analysis
	if s.analyzer != nil && imageURL != "" && vision.ShouldAnalyze(req.Message, true) {
		attachmentID := ""
		if attachment != nil {
			attachmentID = attachment.PublicID
		}
		analysis, err = s.analyzer.Analyze(ctx, req.SessionToken, req.TripID, attachmentID, imageURL, req.Message, currentTrip.CustomContext)
		if err != nil {
			s.log.Warn().Err(err).Str("trip_id", req.TripID).Msg("vision analysis failed, continuing without")
			analysis = nil
		}
	}

	// 6. Load history.
	history, err := s.turns.ListRecent(ctx, req.SessionToken, req.TripID, s.opts.HistoryLimit)
	if err != nil {
		s.log.Warn().Err(err).Msg("history read failed, continuing with empty history")
		history = nil
	}

	// 7. Pre-turn slot snapshot, plus the traveler questionnaire when one
	// was filled in for this session.
	slotsBefore := s.slotStore.Get(ctx, req.SessionToken, req.TripID)
	var travelerIntake *intake.Intake
	if s.intakes != nil {
		travelerIntake = s.intakes.FindBySession(ctx, req.SessionToken)
	}

	// 8. Classify intent.
	turnIntent := intent.Classify(req.Message)

	// 9. Dispatch tools.
	outcomes, toolText := s.dispatchTools(ctx, turnIntent, req.Message, slotsBefore, currentTrip)

	// 10. Assemble prompt.
	visionDescription := ""
	if analysis != nil {
		visionDescription = analysis.Description
	}
	systemPrompt := s.assembler.BuildSystemPrompt(PromptInputs{
		Trip:              currentTrip,
		Slots:             slotsBefore,
		Intake:            travelerIntake,
		VisionDescription: visionDescription,
		ToolText:          toolText,
	})
	userMessage := req.Message
	if userMessage == "" && imageURL != "" {
		userMessage = "(stuurde een foto)"
	}
	messages := s.assembler.BuildMessages(systemPrompt, history, userMessage)

	// 11. Call the language model; the one hard, turn-ending failure.
	if s.provider == nil {
		return nil, internal("chat completion provider is not configured", "missing OPENAI_API_KEY")
	}
	model := currentTrip.Model
	if model == "" {
		model = s.opts.Model
	}
	temperature := s.opts.Temperature
	if currentTrip.Temperature > 0 {
		temperature = currentTrip.Temperature
	}
	maxTokens := s.opts.MaxTokens
	completion, err := s.provider.CreateChatCompletion(ctx, llm.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return nil, internal("failed to get AI response", err.Error())
	}
	if len(completion.Choices) == 0 {
		return nil, internal("failed to get AI response", "completion returned no choices")
	}
	replyText := completion.Choices[0].Message.Text()

	var chatTokens int
	var chatCost float64
	if completion.Usage != nil {
		chatTokens = completion.Usage.TotalTokens
		chatCost = llm.CostEUR(completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
	}
	if err := s.costs.AddChatCost(ctx, req.TripID, chatCost); err != nil {
		s.log.Error().Err(err).Str("trip_id", req.TripID).Msg("track chat cost")
	}

	// 12. Extract and persist slot updates.
	updates := slots.ExtractUpdates(req.Message, replyText, currentTrip.Itinerary)
	if turnIntent != intent.IntentGeneral {
		detected := turnIntent
		updates.LastIntent = &detected
	}
	slotsAfter := slotsBefore.Merge(updates)
	if !updates.IsEmpty() {
		if err := s.slotStore.Update(ctx, req.SessionToken, req.TripID, updates); err != nil {
			// The model call is already billed; keep its trail before failing.
			s.writeAudit(ctx, req, "", slotsBefore, slotsAfter, outcomes, temperature, chatTokens)
			return nil, internal("failed to persist conversation context", err.Error())
		}
	}

	// 13. Format the response.
	visionTokens, visionCost := 0, 0.0
	if analysis != nil {
		visionTokens = analysis.TotalTokens
		visionCost = analysis.CostEUR
	}
	response := s.formatter.Format(FormatParams{
		RawText:      replyText,
		VisionUsed:   analysis != nil,
		Tools:        outcomes,
		LatencyMS:    time.Since(start).Milliseconds(),
		TokensUsed:   chatTokens + visionTokens,
		CostEUR:      chatCost + visionCost,
		UserLocation: req.UserLocation,
	})

	// 14. Persist both turns and the attachment record; append failures are
	// swallowed and never alter the user-visible outcome.
	userTurn := s.persistTurns(ctx, req, replyText, completion.Usage, chatCost, analysis, attachment, imageURL)

	// 15. Log the decision trail; failures are swallowed.
	s.writeAudit(ctx, req, userTurn, slotsBefore, slotsAfter, outcomes, temperature, chatTokens+visionTokens)

	// 16. Done.
	return response, nil
}

func (s *Service) ingestAttachment(ctx context.Context, req Request) (*conversation.Attachment, string) {
	if s.uploader == nil {
		s.log.Warn().Msg("attachment storage not configured, dropping inline image")
		return nil, ""
	}

	payload := req.ImageBase64
	contentType := "image/jpeg"
	if idx := strings.Index(payload, ";base64,"); idx > 0 {
		contentType = strings.TrimPrefix(payload[:idx], "data:")
		payload = payload[idx+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		s.log.Warn().Err(err).Msg("invalid inline image payload, dropping")
		return nil, ""
	}

	publicID := newPublicID("att")
	key := fmt.Sprintf("attachments/%s/%s%s", req.TripID, publicID, extensionFor(contentType))
	url, err := s.uploader.UploadImage(ctx, key, data, contentType)
	if err != nil {
		s.log.Error().Err(err).Msg("attachment upload failed, dropping inline image")
		return nil, ""
	}

	return &conversation.Attachment{
		PublicID:     publicID,
		TripID:       req.TripID,
		SessionToken: req.SessionToken,
		StorageKey:   key,
		PublicURL:    url,
		ContentType:  contentType,
		SizeBytes:    int64(len(data)),
	}, url
}

func (s *Service) dispatchTools(ctx context.Context, turnIntent intent.Intent, message string, current slots.Slots, currentTrip *trip.Trip) ([]ToolOutcome, string) {
	var outcomes []ToolOutcome
	var texts []string

	switch turnIntent {
	case intent.IntentRestaurants:
		if s.places != nil {
			location := firstNonEmpty(current.CurrentHotel, current.CurrentDestination, firstItineraryLocation(currentTrip), currentTrip.Name)
			toolCtx, span := observability.StartToolSpan(ctx, string(tool.NamePlaces))
			result, record := s.places.FindRestaurantsNearby(toolCtx, location)
			finishToolCall(span, record)
			outcomes = append(outcomes, ToolOutcome{Record: record, Places: result})
			if text := result.PromptText(); text != "" {
				texts = append(texts, text)
			}
		}
	case intent.IntentRoute:
		if s.directions != nil {
			if origin, destination, ok := tool.ParseRoutePair(message); ok {
				toolCtx, span := observability.StartToolSpan(ctx, string(tool.NameDirections))
				result, record := s.directions.Route(toolCtx, origin, destination)
				finishToolCall(span, record)
				outcomes = append(outcomes, ToolOutcome{Record: record, Route: result})
				if text := result.PromptText(); text != "" {
					texts = append(texts, text)
				}
			}
		}
	case intent.IntentWebSearch:
		if s.webSearch != nil {
			location := firstNonEmpty(current.CurrentDestination, currentTrip.Name)
			toolCtx, span := observability.StartToolSpan(ctx, string(tool.NameWebSearch))
			result, record := s.webSearch.Search(toolCtx, message, location)
			finishToolCall(span, record)
			outcomes = append(outcomes, ToolOutcome{Record: record, Search: result})
			if text := result.PromptText(); text != "" {
				texts = append(texts, text)
			}
		}
	}

	return outcomes, strings.Join(texts, "\n\n")
}

func finishToolCall(span trace.Span, record tool.CallRecord) {
	status := "success"
	if !record.Success {
		status = "failure"
	}
	metrics.RecordToolCall(string(record.Tool), status)
	observability.EndToolSpan(span, record.Success, record.Summary)
}

func (s *Service) persistTurns(
	ctx context.Context,
	req Request,
	replyText string,
	usage *llm.Usage,
	chatCost float64,
	analysis *vision.Analysis,
	attachment *conversation.Attachment,
	imageURL string,
) string {
	modality := conversation.ModalityText
	switch {
	case req.HasImage():
		modality = conversation.ModalityImage
	case req.AudioBase64 != "":
		modality = conversation.ModalityAudio
	}

	userTurn := &conversation.Turn{
		PublicID:      newPublicID("turn"),
		Modality:      modality,
		TripID:        req.TripID,
		SessionToken:  req.SessionToken,
		Role:          conversation.RoleUser,
		Message:       req.Message,
		HasAttachment: imageURL != "",
	}
	if analysis != nil {
		userTurn.PromptTokens = analysis.PromptTokens
		userTurn.CompletionTokens = analysis.CompletionTokens
		userTurn.TotalTokens = analysis.TotalTokens
		userTurn.CostEUR = analysis.CostEUR
	}
	if err := s.turns.Append(ctx, userTurn); err != nil {
		s.log.Error().Err(err).Msg("persist user turn")
	}

	assistantTurn := &conversation.Turn{
		PublicID:     newPublicID("turn"),
		TripID:       req.TripID,
		SessionToken: req.SessionToken,
		Role:         conversation.RoleAssistant,
		Message:      replyText,
		Modality:     conversation.ModalityText,
		CostEUR:      chatCost,
	}
	if usage != nil {
		assistantTurn.PromptTokens = usage.PromptTokens
		assistantTurn.CompletionTokens = usage.CompletionTokens
		assistantTurn.TotalTokens = usage.TotalTokens
	}
	if err := s.turns.Append(ctx, assistantTurn); err != nil {
		s.log.Error().Err(err).Msg("persist assistant turn")
	}

	if attachment != nil {
		if err := s.attachments.Create(ctx, attachment); err != nil {
			s.log.Error().Err(err).Msg("persist attachment record")
		}
	}

	return userTurn.PublicID
}

func (s *Service) writeAudit(ctx context.Context, req Request, messageID string, before, after slots.Slots, outcomes []ToolOutcome, temperature float64, tokensUsed int) {
	records := make([]tool.CallRecord, 0, len(outcomes))
	for _, outcome := range outcomes {
		records = append(records, outcome.Record)
	}
	entry := &AuditEntry{
		SessionToken: req.SessionToken,
		TripID:       req.TripID,
		MessageID:    messageID,
		SlotsBefore:  before,
		SlotsAfter:   after,
		ToolsCalled:  records,
		Temperature:  temperature,
		TokensUsed:   tokensUsed,
	}
	if err := s.audit.Log(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("trip_id", req.TripID).Msg("append conversation audit log")
	}
}

func newPublicID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstItineraryLocation(t *trip.Trip) string {
	if len(t.Itinerary) == 0 {
		return ""
	}
	return t.Itinerary[0].Location
}
