package domain

import "encoding/json"

// Message types from client.
const (
	MsgTypeJoinQueue       = "join-queue"
	MsgTypeLeaveQueue      = "leave-queue"
	MsgTypeSkipPartner     = "skip-partner"
	MsgTypeOffer           = "webrtc-offer"
	MsgTypeAnswer          = "webrtc-answer"
	MsgTypeICECandidate    = "webrtc-ice-candidate"
	MsgTypeChatMessage     = "chat-message"
	MsgTypeTypingStart     = "typing-start"
	MsgTypeTypingStop      = "typing-stop"
	MsgTypeStartLiveStream = "start-live-stream"
	MsgTypeEndLiveStream   = "end-live-stream"
	MsgTypeJoinStream      = "join-stream"
	MsgTypeLeaveStream     = "leave-stream"
	MsgTypeSendGift        = "send-gift"
	MsgTypeLiveMessage     = "live-message"
	MsgTypeStreamOffer     = "stream-offer"
	MsgTypeStreamAnswer    = "stream-answer"
	MsgTypeStreamICE       = "stream-ice-candidate"
	MsgTypeViewerICE       = "viewer-ice-candidate"
)

// Message types to client.
const (
	MsgTypePartnerFound        = "partner-found"
	MsgTypePartnerDisconnected = "partner-disconnected"
	MsgTypeLiveStreamStarted   = "live-stream-started"
	MsgTypeLiveStreamEnded     = "live-stream-ended"
	MsgTypeStreamEnded         = "stream-ended"
	MsgTypeStreamNotFound      = "stream-not-found"
	MsgTypeViewerJoined        = "viewer-joined"
	MsgTypeViewerLeft          = "viewer-left"
	MsgTypeViewerCountUpdate   = "viewer-count-update"
	MsgTypeGiftReceived        = "gift-received"
	MsgTypeError               = "error"
)

// BaseMessage is the base structure for all messages; only the type tag
// is decoded before dispatch.
type BaseMessage struct {
	Type string `json:"type"`
}

// Client -> Server messages

// JoinQueueMessage enqueues a user for matchmaking.
type JoinQueueMessage struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// SignalMessage carries offer/answer/ICE payloads addressed to a peer.
// The SDP or candidate body is opaque to the server.
type SignalMessage struct {
	Type      string          `json:"type"`
	TargetID  string          `json:"targetId"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// ChatMessage is a text message addressed to the current partner.
type ChatMessage struct {
	Type     string `json:"type"`
	TargetID string `json:"targetId"`
	Text     string `json:"text"`
}

// TypingMessage signals typing-start / typing-stop to the partner.
type TypingMessage struct {
	Type     string `json:"type"`
	TargetID string `json:"targetId"`
}

// StartLiveStreamMessage creates a broadcast session.
type StartLiveStreamMessage struct {
	Type        string `json:"type"`
	StreamID    string `json:"streamId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StreamerID  string `json:"streamerId"`
}

// EndLiveStreamMessage tears down a broadcast session.
type EndLiveStreamMessage struct {
	Type       string `json:"type"`
	StreamID   string `json:"streamId"`
	StreamerID string `json:"streamerId"`
}

// JoinStreamMessage adds the sender to a stream's viewer list.
type JoinStreamMessage struct {
	Type       string `json:"type"`
	StreamID   string `json:"streamId"`
	StreamerID string `json:"streamerId"`
	ViewerID   string `json:"viewerId"`
	ViewerName string `json:"viewerName"`
}

// LeaveStreamMessage removes a viewer from a stream.
type LeaveStreamMessage struct {
	Type     string `json:"type"`
	StreamID string `json:"streamId"`
	ViewerID string `json:"viewerId"`
}

// SendGiftMessage sends a gift to the streamer, fanned out to everyone
// watching the stream.
type SendGiftMessage struct {
	Type      string `json:"type"`
	StreamID  string `json:"streamId"`
	ViewerID  string `json:"viewerId"`
	GiftType  string `json:"giftType"`
	GiftValue int    `json:"giftValue"`
}

// LiveChatMessage is a chat message within a broadcast session.
type LiveChatMessage struct {
	Type     string `json:"type"`
	StreamID string `json:"streamId"`
	Message  string `json:"message"`
}

// StreamSignalMessage carries broadcast WebRTC payloads between a
// streamer and one of its viewers.
type StreamSignalMessage struct {
	Type      string          `json:"type"`
	StreamID  string          `json:"streamId"`
	ViewerID  string          `json:"viewerId"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// Server -> Client messages

// PartnerFoundMessage notifies a queued client of its match. The
// initiator side is expected to create the WebRTC offer.
type PartnerFoundMessage struct {
	Type      string `json:"type"`
	PartnerID string `json:"partnerId"`
	Initiator bool   `json:"initiator"`
}

// PartnerDisconnectedMessage tells a client its peer is gone.
type PartnerDisconnectedMessage struct {
	Type string `json:"type"`
}

// SignalRelayMessage is the re-emitted form of a SignalMessage.
type SignalRelayMessage struct {
	Type      string          `json:"type"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	SenderID  string          `json:"senderId,omitempty"`
}

// ChatRelayMessage is the re-emitted form of a ChatMessage.
type ChatRelayMessage struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	SenderID string `json:"senderId"`
}

// TypingRelayMessage is the re-emitted typing indicator.
type TypingRelayMessage struct {
	Type string `json:"type"`
}

// LiveStreamStartedMessage announces a new broadcast to all clients.
type LiveStreamStartedMessage struct {
	Type        string `json:"type"`
	StreamID    string `json:"streamId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StreamerID  string `json:"streamerId"`
	ViewerCount int    `json:"viewerCount"`
	StartedAt   int64  `json:"startedAt"`
}

// LiveStreamEndedMessage announces a broadcast teardown to all clients.
type LiveStreamEndedMessage struct {
	Type     string `json:"type"`
	StreamID string `json:"streamId"`
}

// StreamEndedMessage is sent to each viewer of an ending stream.
type StreamEndedMessage struct {
	Type     string `json:"type"`
	StreamID string `json:"streamId"`
}

// StreamNotFoundMessage tells the sender the streamId did not resolve.
type StreamNotFoundMessage struct {
	Type     string `json:"type"`
	StreamID string `json:"streamId"`
}

// ViewerJoinedMessage notifies the streamer of a new viewer.
type ViewerJoinedMessage struct {
	Type   string     `json:"type"`
	Viewer ViewerInfo `json:"viewer"`
}

// ViewerLeftMessage notifies the streamer a viewer left.
type ViewerLeftMessage struct {
	Type     string `json:"type"`
	ViewerID string `json:"viewerId"`
}

// ViewerCountUpdateMessage carries the new viewer total, not a delta.
type ViewerCountUpdateMessage struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// GiftReceivedMessage fans a gift out to the streamer and every viewer.
type GiftReceivedMessage struct {
	Type       string `json:"type"`
	GiftType   string `json:"giftType"`
	Value      int    `json:"value"`
	SenderName string `json:"senderName"`
}

// LiveChatRelayMessage is the fanned-out form of a LiveChatMessage.
type LiveChatRelayMessage struct {
	Type       string `json:"type"`
	StreamID   string `json:"streamId"`
	SenderName string `json:"senderName"`
	Message    string `json:"message"`
	Timestamp  int64  `json:"timestamp"`
}

// StreamSignalRelayMessage is the re-emitted form of a
// StreamSignalMessage. ViewerID is set when addressed to the streamer so
// it can tell its viewer peer connections apart.
type StreamSignalRelayMessage struct {
	Type      string          `json:"type"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	ViewerID  string          `json:"viewerId,omitempty"`
}

// ErrorMessage is sent when an inbound message cannot be decoded.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewErrorMessage creates a new error message.
func NewErrorMessage(message string) *ErrorMessage {
	return &ErrorMessage{Type: MsgTypeError, Message: message}
}
