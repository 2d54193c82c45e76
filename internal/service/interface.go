package service

import (
	"context"

	"github.com/ajitkushawaha/KwickLingoApp/internal/domain"
)

// Sender delivers messages to live connections. Satisfied by *hub.Hub.
type Sender interface {
	SendToClient(connID string, message interface{}) error
	Broadcast(message interface{}) error
	IsConnected(connID string) bool
}

// SignalService handles all signaling operations. Every method is keyed
// by the server-assigned connection id of the sending client.
type SignalService interface {
	// HandleJoinQueue registers the client and enqueues it for matching.
	HandleJoinQueue(ctx context.Context, connID, userID string) error

	// HandleLeaveQueue removes the client from the matchmaking queue.
	HandleLeaveQueue(ctx context.Context, connID string) error

	// HandleSkipPartner unpairs the client, notifies the former partner
	// and re-enqueues the skipper at the tail of the queue.
	HandleSkipPartner(ctx context.Context, connID string) error

	// HandleSignal relays an offer, answer or ICE candidate to targetId.
	HandleSignal(ctx context.Context, connID string, msg domain.SignalMessage) error

	// HandleChatMessage relays a chat message to targetId.
	HandleChatMessage(ctx context.Context, connID string, msg domain.ChatMessage) error

	// HandleTyping relays a typing indicator to targetId.
	HandleTyping(ctx context.Context, connID string, msg domain.TypingMessage) error

	// HandleStartLiveStream creates a broadcast session and announces it.
	HandleStartLiveStream(ctx context.Context, connID string, msg domain.StartLiveStreamMessage) error

	// HandleEndLiveStream tears down a broadcast session.
	HandleEndLiveStream(ctx context.Context, connID string, msg domain.EndLiveStreamMessage) error

	// HandleJoinStream adds the client to a stream's viewer list.
	HandleJoinStream(ctx context.Context, connID string, msg domain.JoinStreamMessage) error

	// HandleLeaveStream removes a viewer from a stream.
	HandleLeaveStream(ctx context.Context, connID string, msg domain.LeaveStreamMessage) error

	// HandleSendGift fans a gift out to the streamer and all viewers.
	HandleSendGift(ctx context.Context, connID string, msg domain.SendGiftMessage) error

	// HandleLiveMessage fans a chat message out within a stream.
	HandleLiveMessage(ctx context.Context, connID string, msg domain.LiveChatMessage) error

	// HandleStreamSignal relays broadcast WebRTC payloads between the
	// streamer and one of its viewers.
	HandleStreamSignal(ctx context.Context, connID string, msg domain.StreamSignalMessage) error

	// HandleDisconnect unwinds all state held by a connection.
	HandleDisconnect(ctx context.Context, connID string) error

	// Start starts background goroutines (announcement subscriber).
	Start(ctx context.Context) error

	// Stop stops background goroutines.
	Stop() error
}
