package handler

import (
	"errors"
	"time"

	"ragify-be/internal/pkg/logger"
	"ragify-be/internal/pkg/serverutils"
	"ragify-be/internal/repository/memory"
	"ragify-be/internal/service"
	internalWS "ragify-be/internal/websocket"
	"ragify-be/pkg/events"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// FeedHandler upgrades clients onto a conversation's live message feed
type FeedHandler struct {
	conversations service.IConversationService
	publisher     events.Publisher
	hub           *internalWS.Hub
	jwtSecret     string
	logger        logger.ILogger
}

func NewFeedHandler(conversations service.IConversationService, pub events.Publisher, hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *FeedHandler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &FeedHandler{
		conversations: conversations,
		publisher:     pub,
		hub:           hub,
		jwtSecret:     jwtSecret,
		logger:        log,
	}
}

// ServeWs authenticates the handshake (when a secret is configured) and
// streams feed frames for one conversation.
func (h *FeedHandler) ServeWs(c *fiber.Ctx) error {
	conversationID := c.Params("id")
	if _, err := h.conversations.Lookup(conversationID); err != nil {
		if errors.Is(err, memory.ErrConversationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, err.Error()))
		}
		return err
	}

	var userID string
	if h.jwtSecret != "" {
		tokenStr := serverutils.BearerToken(c)
		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing token (Query 'token' or Header 'Authorization')"))
		}
		uid, err := serverutils.ParseToken(tokenStr, h.jwtSecret)
		if err != nil {
			h.logger.Warn("FeedHandler", "Invalid token in WS handshake", map[string]interface{}{"conversation_id": conversationID})
			return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}
		userID = uid
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("FeedHandler", "Starting WebSocket session", map[string]interface{}{
			"conversation_id": conversationID,
			"user_id":         userID,
		})
		internalWS.ServeWs(h.hub, conn, conversationID, userID)
		h.logger.Info("FeedHandler", "WebSocket session ended", map[string]interface{}{"conversation_id": conversationID})
	})(c)
}

type triggerEventRequest struct {
	Type    string                 `json:"type" validate:"required"`
	Payload map[string]interface{} `json:"payload"`
}

// DebugTriggerEvent publishes an arbitrary event to the bus
func (h *FeedHandler) DebugTriggerEvent(c *fiber.Ctx) error {
	var req triggerEventRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if req.Payload == nil {
		req.Payload = make(map[string]interface{})
	}

	if h.publisher == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(serverutils.ErrorResponse(fiber.StatusServiceUnavailable, "Event publisher not configured"))
	}

	evt := events.BaseEvent{
		Type:       req.Type,
		Data:       req.Payload,
		OccurredAt: time.Now(),
	}
	if err := h.publisher.Publish(c.UserContext(), evt); err != nil {
		return err
	}

	return c.JSON(serverutils.SuccessResponse("Event published", fiber.Map{"type": evt.Type}))
}

// RegisterRoutes mounts the feed socket and, outside production, the debug trigger
func (h *FeedHandler) RegisterRoutes(router fiber.Router, debug bool) {
	router.Get("/ws/conversation/:id", h.ServeWs)

	if debug {
		router.Post("/debug/events", h.DebugTriggerEvent)
	}
}
