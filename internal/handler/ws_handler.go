package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ajitkushawaha/KwickLingoApp/internal/domain"
	"github.com/ajitkushawaha/KwickLingoApp/internal/hub"
	"github.com/ajitkushawaha/KwickLingoApp/internal/log"
	"github.com/ajitkushawaha/KwickLingoApp/internal/metrics"
	"github.com/ajitkushawaha/KwickLingoApp/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Clients connect from app webviews and emulators
	},
}

// WSHandler handles WebSocket connections.
type WSHandler struct {
	hub     *hub.Hub
	service service.SignalService
	metrics *metrics.Metrics
}

// NewWSHandler creates a new WebSocket handler.
func NewWSHandler(h *hub.Hub, svc service.SignalService, m *metrics.Metrics) *WSHandler {
	return &WSHandler{
		hub:     h,
		service: svc,
		metrics: m,
	}
}

// HandleWebSocket handles WebSocket upgrade and message routing.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	l := log.Ctx(c.Request.Context())

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &hub.Client{
		ID:   uuid.New().String(),
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	// Unwind queue/session/stream state before the hub forgets the client
	client.SetDisconnectHandler(func(c *hub.Client) {
		if err := h.service.HandleDisconnect(context.Background(), c.ID); err != nil {
			l.Error().Err(err).Str(log.FieldConnID, c.ID).Msg("disconnect handler error")
		}
	})

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.handleMessage)
}

func (h *WSHandler) handleMessage(client *hub.Client, message []byte) {
	l := log.L()

	// One bad message must not take the connection's reader down with it.
	defer func() {
		if r := recover(); r != nil {
			l.Error().Interface("panic", r).Str(log.FieldConnID, client.ID).Msg("handler panic recovered")
			h.metrics.IncErrors()
		}
	}()

	var base domain.BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		client.SendMessage(domain.NewErrorMessage("invalid message format"))
		h.metrics.IncErrors()
		return
	}

	ctx := context.Background()

	switch base.Type {
	case domain.MsgTypeJoinQueue:
		var msg domain.JoinQueueMessage
		if !h.decode(client, message, &msg) {
			return
		}
		h.logErr(h.service.HandleJoinQueue(ctx, client.ID, msg.UserID), client, base.Type)

	case domain.MsgTypeLeaveQueue:
		h.logErr(h.service.HandleLeaveQueue(ctx, client.ID), client, base.Type)

	case domain.MsgTypeSkipPartner:
		h.logErr(h.service.HandleSkipPartner(ctx, client.ID), client, base.Type)

	case domain.MsgTypeOffer, domain.MsgTypeAnswer, domain.MsgTypeICECandidate:
		var msg domain.SignalMessage
		if !h.decode(client, message, &msg) {
			return
		}
		h.logErr(h.service.HandleSignal(ctx, client.ID, msg), client, base.Type)

	case domain.MsgTypeChatMessage:
		var msg domain.ChatMessage
		if !h.decode(client, message, &msg) {
			return
		}
		h.logErr(h.service.HandleChatMessage(ctx, client.ID, msg), client, base.Type)

	case domain.MsgTypeTypingStart, domain.MsgTypeTypingStop:
		var msg domain.TypingMessage
		if !h.decode(client, message, &msg) {
			return
		}
		h.logErr(h.service.HandleTyping(ctx, client.ID, msg), client, base.Type)

	case domain.MsgTypeStartLiveStream:
		var msg domain.StartLiveStreamMessage
		if !h.decode(client, message, &msg) {
			return
		}
		h.logErr(h.service.HandleStartLiveStream(ctx, client.ID, msg), client, base.Type)

	case domain.MsgTypeEndLiveStream:
		var msg domain.EndLiveStreamMessage
		if !h.decode(client, message, &msg) {
			return
		}
		h.logErr(h.service.HandleEndLiveStream(ctx, client.ID, msg), client, base.Type)

	case domain.MsgTypeJoinStream:
		var msg domain.JoinStreamMessage
		if !h.decode(client, message, &msg) {
			return
		}
		h.logErr(h.service.HandleJoinStream(ctx, client.ID, msg), client, base.Type)

	case domain.MsgTypeLeaveStream:
		var msg domain.LeaveStreamMessage
		if !h.decode(client, message, &msg) {
			return
		}
		h.logErr(h.service.HandleLeaveStream(ctx, client.ID, msg), client, base.Type)

	case domain.MsgTypeSendGift:
		var msg domain.SendGiftMessage
		if !h.decode(client, message, &msg) {
			return
		}
		h.logErr(h.service.HandleSendGift(ctx, client.ID, msg), client, base.Type)

	case domain.MsgTypeLiveMessage:
		var msg domain.LiveChatMessage
		if !h.decode(client, message, &msg) {
			return
		}
		h.logErr(h.service.HandleLiveMessage(ctx, client.ID, msg), client, base.Type)

	case domain.MsgTypeStreamOffer, domain.MsgTypeStreamAnswer, domain.MsgTypeStreamICE, domain.MsgTypeViewerICE:
		var msg domain.StreamSignalMessage
		if !h.decode(client, message, &msg) {
			return
		}
		h.logErr(h.service.HandleStreamSignal(ctx, client.ID, msg), client, base.Type)

	default:
		client.SendMessage(domain.NewErrorMessage("unknown message type"))
		h.metrics.IncErrors()
	}
}

func (h *WSHandler) decode(client *hub.Client, message []byte, v interface{}) bool {
	if err := json.Unmarshal(message, v); err != nil {
		client.SendMessage(domain.NewErrorMessage("invalid message payload"))
		h.metrics.IncErrors()
		return false
	}
	return true
}

func (h *WSHandler) logErr(err error, client *hub.Client, event string) {
	if err != nil {
		log.L().Error().Err(err).
			Str(log.FieldConnID, client.ID).
			Str(log.FieldEvent, event).
			Msg("event handler failed")
		h.metrics.IncErrors()
	}
}
