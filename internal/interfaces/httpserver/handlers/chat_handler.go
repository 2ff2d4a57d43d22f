package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"travelbro-server/internal/domain/chat"
	"travelbro-server/internal/domain/intent"
	"travelbro-server/internal/infrastructure/metrics"
	"travelbro-server/internal/infrastructure/observability"
	"travelbro-server/internal/interfaces/httpserver/dto"
)

// ChatHandler exposes the conversational turn endpoint.
type ChatHandler struct {
	service *chat.Service
	log     zerolog.Logger
}

// NewChatHandler constructs the handler.
func NewChatHandler(service *chat.Service, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		log:     log.With().Str("handler", "chat").Logger(),
	}
}

// Handle handles POST /v1/chat.
func (h *ChatHandler) Handle(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	domainReq := req.ToDomain()
	ctx, span := observability.StartTurnSpan(c.Request.Context(), domainReq.TripID, domainReq.SessionToken)
	defer span.End()

	response, err := h.service.Handle(ctx, domainReq)
	turnIntent := string(intent.Classify(domainReq.Message))
	if err != nil {
		observability.RecordError(span, err)
		status := h.writeError(c, err)
		metrics.RecordTurn(turnIntent, strconv.Itoa(status))
		return
	}

	metrics.RecordTurn(turnIntent, "200")
	metrics.RecordSpend("turn", response.Metadata.TokensUsed, response.Metadata.CostEUR)
	c.JSON(http.StatusOK, response)
}

func (h *ChatHandler) writeError(c *gin.Context, err error) int {
	var turnErr *chat.TurnError
	if !errors.As(err, &turnErr) {
		h.log.Error().Err(err).Msg("unclassified turn failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return http.StatusInternalServerError
	}

	if turnErr.Status >= http.StatusInternalServerError {
		h.log.Error().Err(turnErr).Msg("turn failed")
	} else {
		h.log.Warn().Err(turnErr).Int("status", turnErr.Status).Msg("turn rejected")
	}

	body := gin.H{"error": turnErr.Message}
	if turnErr.Reason != "" {
		body["reason"] = turnErr.Reason
	}
	if turnErr.Detail != "" {
		body["detail"] = turnErr.Detail
	}
	c.JSON(turnErr.Status, body)
	return turnErr.Status
}
