package chat_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelbro-server/internal/domain/chat"
	"travelbro-server/internal/domain/conversation"
	"travelbro-server/internal/domain/intake"
	"travelbro-server/internal/domain/llm"
	"travelbro-server/internal/domain/slots"
	"travelbro-server/internal/domain/tool"
	"travelbro-server/internal/domain/trip"
	"travelbro-server/internal/infrastructure/metrics"
)

type fakeTripRepo struct {
	trip       *trip.Trip
	visionCost float64
	chatCost   float64
}

func (f *fakeTripRepo) FindByID(ctx context.Context, id string) (*trip.Trip, error) {
	if f.trip == nil || f.trip.ID != id {
		return nil, trip.ErrNotFound
	}
	snapshot := *f.trip
	return &snapshot, nil
}

func (f *fakeTripRepo) AddVisionCost(ctx context.Context, tripID string, eur float64) error {
	f.visionCost += eur
	return nil
}

func (f *fakeTripRepo) AddChatCost(ctx context.Context, tripID string, eur float64) error {
	f.chatCost += eur
	return nil
}

type fakeTurnRepo struct {
	appended []conversation.Turn
	history  []conversation.Turn
}

func (f *fakeTurnRepo) Append(ctx context.Context, turn *conversation.Turn) error {
	f.appended = append(f.appended, *turn)
	return nil
}

func (f *fakeTurnRepo) ListRecent(ctx context.Context, sessionToken, tripID string, limit int) ([]conversation.Turn, error) {
	return f.history, nil
}

type fakeAttachmentRepo struct{}

func (fakeAttachmentRepo) Create(ctx context.Context, attachment *conversation.Attachment) error {
	return nil
}

type fakeSlotStore struct {
	stored  slots.Slots
	updates []slots.Update
	fail    bool
}

func (f *fakeSlotStore) Get(ctx context.Context, sessionToken, tripID string) slots.Slots {
	return f.stored
}

func (f *fakeSlotStore) Update(ctx context.Context, sessionToken, tripID string, update slots.Update) error {
	if f.fail {
		return errors.New("write failed")
	}
	f.updates = append(f.updates, update)
	f.stored = f.stored.Merge(update)
	return nil
}

type fakePlaces struct {
	calls  []string
	fail   bool
	result *tool.PlacesResult
}

func (f *fakePlaces) FindRestaurantsNearby(ctx context.Context, location string) (*tool.PlacesResult, tool.CallRecord) {
	f.calls = append(f.calls, location)
	record := tool.CallRecord{Tool: tool.NamePlaces, Params: tool.PlacesParams{Location: location, RadiusMeters: 1500}}
	if f.fail {
		record.Summary = "error"
		return &tool.PlacesResult{Location: location}, record
	}
	record.Success = true
	record.Summary = "1 restaurants"
	if f.result != nil {
		return f.result, record
	}
	return &tool.PlacesResult{
		Location: location,
		Restaurants: []tool.Restaurant{
			{Name: "La Bodega", Address: "Calle Carmen 146", DistanceMeters: 240, MapsURL: "https://maps.example/1"},
		},
	}, record
}

type fakeDirections struct {
	origins      []string
	destinations []string
}

func (f *fakeDirections) Route(ctx context.Context, origin, destination string) (*tool.RouteResult, tool.CallRecord) {
	f.origins = append(f.origins, origin)
	f.destinations = append(f.destinations, destination)
	return &tool.RouteResult{
			Origin:          origin,
			Destination:     destination,
			DistanceKM:      584,
			DurationMinutes: 430,
		}, tool.CallRecord{
			Tool:    tool.NameDirections,
			Params:  tool.RouteParams{Origin: origin, Destination: destination},
			Summary: "584 km, 430 min",
			Success: true,
		}
}

type fakeIntakeRepo struct {
	data *intake.Intake
}

func (f *fakeIntakeRepo) FindBySession(ctx context.Context, sessionToken string) *intake.Intake {
	return f.data
}

type fakeProvider struct {
	calls   int
	reply   string
	failure error
	lastReq llm.ChatCompletionRequest
}

func (f *fakeProvider) CreateChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	f.calls++
	f.lastReq = req
	if f.failure != nil {
		return nil, f.failure
	}
	return &llm.ChatCompletionResponse{
		Choices: []llm.ChatCompletionChoice{{Message: llm.ChatMessage{Role: "assistant", Content: f.reply}}},
		Usage:   &llm.Usage{PromptTokens: 500, CompletionTokens: 120, TotalTokens: 620},
	}, nil
}

type fakeAudit struct {
	entries []chat.AuditEntry
}

func (f *fakeAudit) Log(ctx context.Context, entry *chat.AuditEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

type fixture struct {
	trips      *fakeTripRepo
	turns      *fakeTurnRepo
	slotStore  *fakeSlotStore
	intakes    *fakeIntakeRepo
	places     *fakePlaces
	directions *fakeDirections
	provider   *fakeProvider
	audit      *fakeAudit
	service    *chat.Service
}

func newFixture(t *testing.T, activeTrip *trip.Trip) *fixture {
	t.Helper()
	f := &fixture{
		trips:      &fakeTripRepo{trip: activeTrip},
		turns:      &fakeTurnRepo{},
		slotStore:  &fakeSlotStore{},
		intakes:    &fakeIntakeRepo{},
		places:     &fakePlaces{},
		directions: &fakeDirections{},
		provider:   &fakeProvider{reply: "Hier is je antwoord."},
		audit:      &fakeAudit{},
	}
	f.service = chat.NewService(
		f.trips,
		f.trips,
		f.turns,
		fakeAttachmentRepo{},
		f.slotStore,
		f.intakes,
		f.places,
		f.directions,
		nil,
		nil,
		f.provider,
		f.audit,
		nil,
		nil,
		chat.Options{Model: "gpt-4o", Temperature: 0.7, MaxTokens: 1000, HistoryLimit: 20},
		zerolog.Nop(),
	)
	return f
}

func activeTrip() *trip.Trip {
	return &trip.Trip{
		ID:     "trip_123",
		Name:   "Peru Rondreis",
		Status: trip.StatusActive,
		Itinerary: []trip.ItineraryDay{
			{Day: 1, Location: "Lima", Hotel: "Hotel Costa"},
			{Day: 2, Location: "Cusco", Hotel: "Hotel Malabar"},
		},
	}
}

func TestHandleValidation(t *testing.T) {
	f := newFixture(t, activeTrip())

	_, err := f.service.Handle(context.Background(), chat.Request{SessionToken: "s1", Message: "hoi"})
	var turnErr *chat.TurnError
	require.ErrorAs(t, err, &turnErr)
	assert.Equal(t, http.StatusBadRequest, turnErr.Status)

	_, err = f.service.Handle(context.Background(), chat.Request{TripID: "trip_123", SessionToken: "s1"})
	require.ErrorAs(t, err, &turnErr)
	assert.Equal(t, http.StatusBadRequest, turnErr.Status)
	assert.Zero(t, f.provider.calls)
}

func TestHandleTripNotFound(t *testing.T) {
	f := newFixture(t, activeTrip())

	_, err := f.service.Handle(context.Background(), chat.Request{TripID: "missing", SessionToken: "s1", Message: "hoi"})
	var turnErr *chat.TurnError
	require.ErrorAs(t, err, &turnErr)
	assert.Equal(t, http.StatusNotFound, turnErr.Status)
}

func TestHandleGuardPrecedence(t *testing.T) {
	stopped := activeTrip()
	stopped.Status = trip.StatusStopped
	stopped.StatusReason = "trip afgerond"
	f := newFixture(t, stopped)

	_, err := f.service.Handle(context.Background(), chat.Request{TripID: "trip_123", SessionToken: "s1", Message: "restaurants near my hotel"})
	var turnErr *chat.TurnError
	require.ErrorAs(t, err, &turnErr)
	assert.Equal(t, http.StatusForbidden, turnErr.Status)
	assert.Equal(t, "trip afgerond", turnErr.Reason)

	// Refused before any billable call: no tools, no model, no turns.
	assert.Empty(t, f.places.calls)
	assert.Zero(t, f.provider.calls)
	assert.Empty(t, f.turns.appended)
	assert.Empty(t, f.audit.entries)
}

func TestHandleExpiredTrip(t *testing.T) {
	expired := activeTrip()
	past := time.Now().Add(-time.Hour)
	expired.ExpiresAt = &past
	f := newFixture(t, expired)

	_, err := f.service.Handle(context.Background(), chat.Request{TripID: "trip_123", SessionToken: "s1", Message: "hoi"})
	var turnErr *chat.TurnError
	require.ErrorAs(t, err, &turnErr)
	assert.Equal(t, http.StatusForbidden, turnErr.Status)
	assert.Equal(t, "trip is expired", turnErr.Reason)
}

func TestHandleRestaurantsNearHotel(t *testing.T) {
	f := newFixture(t, activeTrip())
	f.slotStore.stored = slots.Slots{CurrentHotel: "Hotel Malabar"}
	f.provider.reply = "Hier zijn opties:\n1. **La Bodega**\n   Adres: Calle Carmen 146\n   Afstand: 240m\n"

	response, err := f.service.Handle(context.Background(), chat.Request{
		TripID:       "trip_123",
		SessionToken: "s1",
		Message:      "restaurants near my hotel",
	})
	require.NoError(t, err)

	require.Equal(t, []string{"Hotel Malabar"}, f.places.calls)
	require.NotEmpty(t, response.DisplayCards)
	card := response.DisplayCards[0]
	assert.Equal(t, "restaurant", card.Type)
	assert.Equal(t, 240, card.Data["distance_meters"])

	// Both turns persisted, assistant carries the model accounting.
	require.Len(t, f.turns.appended, 2)
	assert.Equal(t, conversation.RoleUser, f.turns.appended[0].Role)
	assert.Equal(t, conversation.RoleAssistant, f.turns.appended[1].Role)
	assert.Equal(t, 620, f.turns.appended[1].TotalTokens)
	assert.Greater(t, f.trips.chatCost, 0.0)

	require.Len(t, f.audit.entries, 1)
	require.Len(t, f.audit.entries[0].ToolsCalled, 1)
	assert.Equal(t, tool.NamePlaces, f.audit.entries[0].ToolsCalled[0].Tool)
}

func TestHandleRouteLimaCusco(t *testing.T) {
	f := newFixture(t, activeTrip())
	f.provider.reply = "🚗 Route gevonden!\nAfstand: 584 km\nReistijd: 430 minuten"

	response, err := f.service.Handle(context.Background(), chat.Request{
		TripID:       "trip_123",
		SessionToken: "s1",
		Message:      "hoe ver is het van Lima naar Cusco?",
	})
	require.NoError(t, err)

	require.Equal(t, []string{"Lima"}, f.directions.origins)
	require.Equal(t, []string{"Cusco"}, f.directions.destinations)
	assert.Empty(t, f.places.calls)

	require.NotEmpty(t, response.DisplayCards)
	card := response.DisplayCards[0]
	assert.Equal(t, "route", card.Type)
	assert.Greater(t, card.Data["distance_km"].(float64), 0.0)
	assert.Greater(t, card.Data["duration_minutes"].(int), 0)
}

func TestHandleToolFailureIndependence(t *testing.T) {
	f := newFixture(t, activeTrip())
	f.places.fail = true
	f.provider.reply = "Ik kon geen actuele restaurantdata vinden, maar San Blas is altijd goed."

	response, err := f.service.Handle(context.Background(), chat.Request{
		TripID:       "trip_123",
		SessionToken: "s1",
		Message:      "waar kan ik eten?",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, response.Text)
	for _, card := range response.DisplayCards {
		assert.NotEqual(t, "restaurant", card.Type)
	}

	// The failed call is still on the audit trail.
	require.Len(t, f.audit.entries, 1)
	require.Len(t, f.audit.entries[0].ToolsCalled, 1)
	assert.False(t, f.audit.entries[0].ToolsCalled[0].Success)
}

func TestHandleChatFailureFatal(t *testing.T) {
	f := newFixture(t, activeTrip())
	f.provider.failure = errors.New("upstream timeout")

	_, err := f.service.Handle(context.Background(), chat.Request{TripID: "trip_123", SessionToken: "s1", Message: "hoi"})
	var turnErr *chat.TurnError
	require.ErrorAs(t, err, &turnErr)
	assert.Equal(t, http.StatusInternalServerError, turnErr.Status)
	assert.Empty(t, f.turns.appended)
}

func TestHandleMissingProvider(t *testing.T) {
	f := newFixture(t, activeTrip())
	noProvider := chat.NewService(
		f.trips, f.trips, f.turns, fakeAttachmentRepo{}, f.slotStore, f.intakes,
		f.places, f.directions, nil, nil, nil, f.audit, nil, nil,
		chat.Options{Model: "gpt-4o", Temperature: 0.7, MaxTokens: 1000, HistoryLimit: 20},
		zerolog.Nop(),
	)

	_, err := noProvider.Handle(context.Background(), chat.Request{TripID: "trip_123", SessionToken: "s1", Message: "hoi"})
	var turnErr *chat.TurnError
	require.ErrorAs(t, err, &turnErr)
	assert.Equal(t, http.StatusInternalServerError, turnErr.Status)
}

func TestHandleSlotExtractionPersists(t *testing.T) {
	f := newFixture(t, activeTrip())
	f.provider.reply = "Veel plezier in Cusco! Hotel Malabar heeft een mooi dakterras."

	_, err := f.service.Handle(context.Background(), chat.Request{
		TripID:       "trip_123",
		SessionToken: "s1",
		Message:      "we zijn aangekomen in Cusco",
	})
	require.NoError(t, err)

	assert.Equal(t, "Cusco", f.slotStore.stored.CurrentDestination)
	assert.Equal(t, "Hotel Malabar", f.slotStore.stored.CurrentHotel)
	assert.Equal(t, 2, f.slotStore.stored.CurrentDay)
}

func TestHandleDispatchDeterministic(t *testing.T) {
	message := "restaurants near my hotel"
	first := newFixture(t, activeTrip())
	first.slotStore.stored = slots.Slots{CurrentHotel: "Hotel Malabar"}
	second := newFixture(t, activeTrip())
	second.slotStore.stored = slots.Slots{CurrentHotel: "Hotel Malabar"}

	_, err := first.service.Handle(context.Background(), chat.Request{TripID: "trip_123", SessionToken: "s1", Message: message})
	require.NoError(t, err)
	_, err = second.service.Handle(context.Background(), chat.Request{TripID: "trip_123", SessionToken: "s1", Message: message})
	require.NoError(t, err)

	assert.Equal(t, first.places.calls, second.places.calls)
	assert.Equal(t, first.audit.entries[0].ToolsCalled, second.audit.entries[0].ToolsCalled)
}

func TestHandleIntakePersonalizationInPrompt(t *testing.T) {
	f := newFixture(t, activeTrip())
	f.intakes.data = &intake.Intake{
		SessionToken: "s1",
		TripID:       "trip_123",
		Data: map[string]any{
			"travelers": []any{map[string]any{"name": "Susan", "favorite_food": "pizza"}},
		},
	}

	_, err := f.service.Handle(context.Background(), chat.Request{TripID: "trip_123", SessionToken: "s1", Message: "hoi"})
	require.NoError(t, err)

	require.NotEmpty(t, f.provider.lastReq.Messages)
	systemPrompt, ok := f.provider.lastReq.Messages[0].Content.(string)
	require.True(t, ok)
	assert.Contains(t, systemPrompt, "Reiziger informatie:")
	assert.Contains(t, systemPrompt, "Susan")
	assert.Contains(t, systemPrompt, "GEBRUIK VAN REIZIGER INFORMATIE")
}

func TestHandleNoIntakeFallbackLine(t *testing.T) {
	f := newFixture(t, activeTrip())

	_, err := f.service.Handle(context.Background(), chat.Request{TripID: "trip_123", SessionToken: "s1", Message: "hoi"})
	require.NoError(t, err)

	systemPrompt, ok := f.provider.lastReq.Messages[0].Content.(string)
	require.True(t, ok)
	assert.Contains(t, systemPrompt, "Geen intake data beschikbaar")
	assert.NotContains(t, systemPrompt, "GEBRUIK VAN REIZIGER INFORMATIE")
}

func TestHandleToolCallCounters(t *testing.T) {
	successBefore := testutil.ToFloat64(metrics.ToolCallsTotal.WithLabelValues("google_places", "success"))
	failureBefore := testutil.ToFloat64(metrics.ToolCallsTotal.WithLabelValues("google_places", "failure"))

	f := newFixture(t, activeTrip())
	_, err := f.service.Handle(context.Background(), chat.Request{TripID: "trip_123", SessionToken: "s1", Message: "waar kan ik eten?"})
	require.NoError(t, err)

	failing := newFixture(t, activeTrip())
	failing.places.fail = true
	_, err = failing.service.Handle(context.Background(), chat.Request{TripID: "trip_123", SessionToken: "s1", Message: "waar kan ik eten?"})
	require.NoError(t, err)

	successAfter := testutil.ToFloat64(metrics.ToolCallsTotal.WithLabelValues("google_places", "success"))
	failureAfter := testutil.ToFloat64(metrics.ToolCallsTotal.WithLabelValues("google_places", "failure"))
	assert.Equal(t, 1.0, successAfter-successBefore)
	assert.Equal(t, 1.0, failureAfter-failureBefore)
}

func TestHandleSlotWriteFailureIsFatalButAudited(t *testing.T) {
	f := newFixture(t, activeTrip())
	f.slotStore.fail = true
	f.provider.reply = "Welkom in Cusco!"

	_, err := f.service.Handle(context.Background(), chat.Request{
		TripID:       "trip_123",
		SessionToken: "s1",
		Message:      "we zijn in Cusco",
	})
	var turnErr *chat.TurnError
	require.ErrorAs(t, err, &turnErr)
	assert.Equal(t, http.StatusInternalServerError, turnErr.Status)

	// The model call is already billed, so the trail survives the failure.
	require.Len(t, f.audit.entries, 1)
}
