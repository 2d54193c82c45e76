package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ajitkushawaha/KwickLingoApp/internal/domain"
	"github.com/ajitkushawaha/KwickLingoApp/internal/kafka"
	"github.com/ajitkushawaha/KwickLingoApp/internal/log"
	"github.com/ajitkushawaha/KwickLingoApp/internal/metrics"
	"github.com/ajitkushawaha/KwickLingoApp/internal/pubsub"
	"github.com/ajitkushawaha/KwickLingoApp/internal/state"
)

// anonymousName is used when a live-message or gift sender cannot be
// found in the stream's viewer list.
const anonymousName = "Anonymous"

type signalService struct {
	sender   Sender
	state    *state.State
	producer kafka.EventProducer // nil when Kafka is disabled
	pubsub   pubsub.PubSub       // nil when Redis is disabled
	metrics  *metrics.Metrics

	instanceID string
	cancel     context.CancelFunc
}

// NewSignalService creates a new SignalService instance. producer and
// ps may be nil; the service degrades to single-instance operation
// without analytics events.
func NewSignalService(sender Sender, st *state.State, producer kafka.EventProducer, ps pubsub.PubSub, m *metrics.Metrics) SignalService {
	return &signalService{
		sender:     sender,
		state:      st,
		producer:   producer,
		pubsub:     ps,
		metrics:    m,
		instanceID: uuid.New().String(),
	}
}

func (s *signalService) HandleJoinQueue(ctx context.Context, connID, userID string) error {
	l := log.Ctx(ctx)

	if oldConn, replaced := s.state.Register(userID, connID); replaced {
		// Reconnect with the same user id: last writer wins. The old
		// connection's queue/session entries stay until its own
		// disconnect cleanup fires.
		l.Warn().
			Str(log.FieldClientID, userID).
			Str(log.FieldConnID, connID).
			Str("replaced_conn_id", oldConn).
			Msg("client id remapped to new connection")
	}

	if !s.state.Enqueue(userID, connID) {
		l.Debug().Str(log.FieldClientID, userID).Msg("already queued, join ignored")
	}

	s.matchCycle(ctx)
	return nil
}

func (s *signalService) HandleLeaveQueue(ctx context.Context, connID string) error {
	s.state.DequeueByConnection(connID)
	return nil
}

func (s *signalService) HandleSkipPartner(ctx context.Context, connID string) error {
	partnerConn, ok := s.state.Unpair(connID)
	if !ok {
		// Not paired: no-op.
		return nil
	}

	s.sender.SendToClient(partnerConn, &domain.PartnerDisconnectedMessage{
		Type: domain.MsgTypePartnerDisconnected,
	})

	clientID, known := s.state.ClientOf(connID)
	partnerID, _ := s.state.ClientOf(partnerConn)
	s.produceMatchEnded(ctx, clientID, partnerID, kafka.ReasonSkip)

	// The skipper goes to the back of the queue; the former partner
	// must rejoin on its own.
	if known {
		s.state.Enqueue(clientID, connID)
		s.matchCycle(ctx)
	}
	return nil
}

// matchCycle pairs as many waiting clients as possible and notifies
// both sides of each new pairing.
func (s *signalService) matchCycle(ctx context.Context) {
	l := log.Ctx(ctx)

	matches := s.state.MatchNext(s.sender.IsConnected)
	for _, m := range matches {
		s.sender.SendToClient(m.Initiator.ConnID, &domain.PartnerFoundMessage{
			Type:      domain.MsgTypePartnerFound,
			PartnerID: m.Responder.ClientID,
			Initiator: true,
		})
		s.sender.SendToClient(m.Responder.ConnID, &domain.PartnerFoundMessage{
			Type:      domain.MsgTypePartnerFound,
			PartnerID: m.Initiator.ClientID,
			Initiator: false,
		})

		l.Info().
			Str("initiator", m.Initiator.ClientID).
			Str("responder", m.Responder.ClientID).
			Msg("matched")
		s.metrics.IncMatches()

		if s.producer != nil {
			if err := s.producer.ProduceMatchCreated(ctx, m.Initiator.ClientID, m.Responder.ClientID); err != nil {
				l.Error().Err(err).Msg("failed to produce match_created event")
			}
		}
	}
}

func (s *signalService) HandleSignal(ctx context.Context, connID string, msg domain.SignalMessage) error {
	targetConn, ok := s.state.Resolve(msg.TargetID)
	if !ok {
		// Stale signaling is worthless; drop without telling the sender.
		log.Ctx(ctx).Debug().
			Str(log.FieldTargetID, msg.TargetID).
			Str(log.FieldEvent, msg.Type).
			Msg("relay target not found, dropping")
		return nil
	}

	senderID, _ := s.state.ClientOf(connID)
	s.metrics.IncRelayed()
	return s.sender.SendToClient(targetConn, &domain.SignalRelayMessage{
		Type:      msg.Type,
		SDP:       msg.SDP,
		Candidate: msg.Candidate,
		SenderID:  senderID,
	})
}

func (s *signalService) HandleChatMessage(ctx context.Context, connID string, msg domain.ChatMessage) error {
	targetConn, ok := s.state.Resolve(msg.TargetID)
	if !ok {
		return nil
	}

	senderID, _ := s.state.ClientOf(connID)
	s.metrics.IncRelayed()
	return s.sender.SendToClient(targetConn, &domain.ChatRelayMessage{
		Type:     domain.MsgTypeChatMessage,
		Text:     msg.Text,
		SenderID: senderID,
	})
}

func (s *signalService) HandleTyping(ctx context.Context, connID string, msg domain.TypingMessage) error {
	targetConn, ok := s.state.Resolve(msg.TargetID)
	if !ok {
		return nil
	}

	s.metrics.IncRelayed()
	return s.sender.SendToClient(targetConn, &domain.TypingRelayMessage{Type: msg.Type})
}

func (s *signalService) HandleStartLiveStream(ctx context.Context, connID string, msg domain.StartLiveStreamMessage) error {
	l := log.Ctx(ctx)

	st, orphaned, replaced := s.state.StartStream(msg.StreamID, msg.StreamerID, connID, msg.Title, msg.Description)
	if replaced {
		l.Warn().
			Str(log.FieldStreamID, msg.StreamID).
			Str("old_streamer", orphaned.StreamerID).
			Msg("stream id collision, previous stream overwritten")
		for _, viewerConn := range orphaned.ViewerConnIDs() {
			s.sender.SendToClient(viewerConn, &domain.StreamEndedMessage{
				Type:     domain.MsgTypeStreamEnded,
				StreamID: orphaned.ID,
			})
		}
	}

	s.sender.Broadcast(&domain.LiveStreamStartedMessage{
		Type:        domain.MsgTypeLiveStreamStarted,
		StreamID:    st.ID,
		Title:       st.Title,
		Description: st.Description,
		StreamerID:  st.StreamerID,
		ViewerCount: 0,
		StartedAt:   st.StartTime.Unix(),
	})

	l.Info().
		Str(log.FieldStreamID, st.ID).
		Str(log.FieldClientID, st.StreamerID).
		Msg("live stream started")
	s.metrics.IncStreamsStarted()

	s.publishAnnouncement(ctx, pubsub.EventStreamStarted, &pubsub.StreamStartedAnnouncement{
		StreamID:    st.ID,
		Title:       st.Title,
		Description: st.Description,
		StreamerID:  st.StreamerID,
		StartedAt:   st.StartTime.Unix(),
	})

	if s.producer != nil {
		if err := s.producer.ProduceStreamStarted(ctx, st.ID, st.StreamerID); err != nil {
			l.Error().Err(err).Msg("failed to produce stream_started event")
		}
	}
	return nil
}

func (s *signalService) HandleEndLiveStream(ctx context.Context, connID string, msg domain.EndLiveStreamMessage) error {
	st, ok := s.state.EndStream(msg.StreamID)
	if !ok {
		return s.sender.SendToClient(connID, &domain.StreamNotFoundMessage{
			Type:     domain.MsgTypeStreamNotFound,
			StreamID: msg.StreamID,
		})
	}

	s.finishStream(ctx, st, kafka.ReasonExplicit)
	return nil
}

// finishStream notifies viewers and the world that a stream is gone.
// The stream has already been removed from the registry.
func (s *signalService) finishStream(ctx context.Context, st domain.LiveStream, reason string) {
	for _, viewerConn := range st.ViewerConnIDs() {
		s.sender.SendToClient(viewerConn, &domain.StreamEndedMessage{
			Type:     domain.MsgTypeStreamEnded,
			StreamID: st.ID,
		})
	}

	s.sender.Broadcast(&domain.LiveStreamEndedMessage{
		Type:     domain.MsgTypeLiveStreamEnded,
		StreamID: st.ID,
	})

	log.Ctx(ctx).Info().
		Str(log.FieldStreamID, st.ID).
		Str("reason", reason).
		Msg("live stream ended")

	s.publishAnnouncement(ctx, pubsub.EventStreamEnded, &pubsub.StreamEndedAnnouncement{StreamID: st.ID})

	if s.producer != nil {
		if err := s.producer.ProduceStreamStopped(ctx, st.ID, st.StreamerID, reason); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to produce stream_stopped event")
		}
	}
}

func (s *signalService) HandleJoinStream(ctx context.Context, connID string, msg domain.JoinStreamMessage) error {
	res, ok := s.state.JoinStream(msg.StreamID, msg.ViewerID, msg.ViewerName, connID)
	if !ok {
		return s.sender.SendToClient(connID, &domain.StreamNotFoundMessage{
			Type:     domain.MsgTypeStreamNotFound,
			StreamID: msg.StreamID,
		})
	}

	if res.IsNew {
		s.sender.SendToClient(res.Stream.ConnID, &domain.ViewerJoinedMessage{
			Type:   domain.MsgTypeViewerJoined,
			Viewer: res.Viewer.Info(),
		})
	}

	s.broadcastViewerCount(res.Stream)
	return nil
}

func (s *signalService) HandleLeaveStream(ctx context.Context, connID string, msg domain.LeaveStreamMessage) error {
	st, ok := s.state.LeaveStream(msg.StreamID, msg.ViewerID)
	if !ok {
		// Unknown stream or viewer: no-op.
		return nil
	}

	s.sender.SendToClient(st.ConnID, &domain.ViewerLeftMessage{
		Type:     domain.MsgTypeViewerLeft,
		ViewerID: msg.ViewerID,
	})
	s.broadcastViewerCount(st)
	return nil
}

// broadcastViewerCount sends the new total to every current viewer.
func (s *signalService) broadcastViewerCount(st domain.LiveStream) {
	out := &domain.ViewerCountUpdateMessage{
		Type:  domain.MsgTypeViewerCountUpdate,
		Count: st.ViewerCount(),
	}
	for _, viewerConn := range st.ViewerConnIDs() {
		s.sender.SendToClient(viewerConn, out)
	}
}

func (s *signalService) HandleSendGift(ctx context.Context, connID string, msg domain.SendGiftMessage) error {
	st, ok := s.state.Stream(msg.StreamID)
	if !ok {
		return s.sender.SendToClient(connID, &domain.StreamNotFoundMessage{
			Type:     domain.MsgTypeStreamNotFound,
			StreamID: msg.StreamID,
		})
	}

	senderName := anonymousName
	if v, found := st.ViewerByID(msg.ViewerID); found {
		senderName = v.Name
	}

	out := &domain.GiftReceivedMessage{
		Type:       domain.MsgTypeGiftReceived,
		GiftType:   msg.GiftType,
		Value:      msg.GiftValue,
		SenderName: senderName,
	}
	s.fanOutToStream(st, out)
	s.metrics.IncGifts()
	return nil
}

func (s *signalService) HandleLiveMessage(ctx context.Context, connID string, msg domain.LiveChatMessage) error {
	st, ok := s.state.Stream(msg.StreamID)
	if !ok {
		return s.sender.SendToClient(connID, &domain.StreamNotFoundMessage{
			Type:     domain.MsgTypeStreamNotFound,
			StreamID: msg.StreamID,
		})
	}

	senderName := anonymousName
	if st.ConnID == connID {
		senderName = st.StreamerID
	} else {
		for _, v := range st.Viewers {
			if v.ConnID == connID {
				senderName = v.Name
				break
			}
		}
	}

	s.fanOutToStream(st, &domain.LiveChatRelayMessage{
		Type:       domain.MsgTypeLiveMessage,
		StreamID:   st.ID,
		SenderName: senderName,
		Message:    msg.Message,
		Timestamp:  time.Now().Unix(),
	})
	return nil
}

// fanOutToStream sends a message to the streamer and every viewer.
func (s *signalService) fanOutToStream(st domain.LiveStream, message interface{}) {
	s.sender.SendToClient(st.ConnID, message)
	for _, viewerConn := range st.ViewerConnIDs() {
		s.sender.SendToClient(viewerConn, message)
	}
}

func (s *signalService) HandleStreamSignal(ctx context.Context, connID string, msg domain.StreamSignalMessage) error {
	st, ok := s.state.Stream(msg.StreamID)
	if !ok {
		return s.sender.SendToClient(connID, &domain.StreamNotFoundMessage{
			Type:     domain.MsgTypeStreamNotFound,
			StreamID: msg.StreamID,
		})
	}

	switch msg.Type {
	case domain.MsgTypeStreamOffer, domain.MsgTypeStreamICE:
		// Streamer -> viewer
		v, found := st.ViewerByID(msg.ViewerID)
		if !found {
			log.Ctx(ctx).Debug().
				Str(log.FieldStreamID, msg.StreamID).
				Str(log.FieldViewerID, msg.ViewerID).
				Msg("stream signal target viewer not found, dropping")
			return nil
		}
		s.metrics.IncRelayed()
		return s.sender.SendToClient(v.ConnID, &domain.StreamSignalRelayMessage{
			Type:      msg.Type,
			SDP:       msg.SDP,
			Candidate: msg.Candidate,
		})

	case domain.MsgTypeStreamAnswer, domain.MsgTypeViewerICE:
		// Viewer -> streamer; carry the viewer id so the streamer can
		// tell its peer connections apart.
		s.metrics.IncRelayed()
		return s.sender.SendToClient(st.ConnID, &domain.StreamSignalRelayMessage{
			Type:      msg.Type,
			SDP:       msg.SDP,
			Candidate: msg.Candidate,
			ViewerID:  msg.ViewerID,
		})
	}
	return nil
}

func (s *signalService) HandleDisconnect(ctx context.Context, connID string) error {
	l := log.Ctx(ctx)

	report := s.state.CleanupConnection(connID)

	if report.EndedOwnStream {
		s.finishStream(ctx, report.EndedStream, kafka.ReasonDisconnect)
	}

	for _, removal := range report.LeftStreams {
		s.sender.SendToClient(removal.Stream.ConnID, &domain.ViewerLeftMessage{
			Type:     domain.MsgTypeViewerLeft,
			ViewerID: removal.ViewerID,
		})
		s.broadcastViewerCount(removal.Stream)
	}

	if report.HadPartner {
		s.sender.SendToClient(report.PartnerConn, &domain.PartnerDisconnectedMessage{
			Type: domain.MsgTypePartnerDisconnected,
		})
		partnerID, _ := s.state.ClientOf(report.PartnerConn)
		s.produceMatchEnded(ctx, report.ClientID, partnerID, kafka.ReasonDisconnect)
	}

	l.Info().
		Str(log.FieldConnID, connID).
		Str(log.FieldClientID, report.ClientID).
		Bool("was_queued", report.WasQueued).
		Bool("was_paired", report.HadPartner).
		Msg("connection cleaned up")
	return nil
}

func (s *signalService) produceMatchEnded(ctx context.Context, clientA, clientB, reason string) {
	if s.producer == nil {
		return
	}
	if err := s.producer.ProduceMatchEnded(ctx, clientA, clientB, reason); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to produce match_ended event")
	}
}

func (s *signalService) publishAnnouncement(ctx context.Context, eventType string, payload interface{}) {
	if s.pubsub == nil {
		return
	}
	event, err := pubsub.NewEvent(eventType, s.instanceID, payload)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to build announcement event")
		return
	}
	if err := s.pubsub.Publish(ctx, pubsub.ChannelAnnouncements, event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to publish announcement")
	}
}

func (s *signalService) Start(ctx context.Context) error {
	if s.pubsub == nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	eventCh, err := s.pubsub.Subscribe(ctx, pubsub.ChannelAnnouncements)
	if err != nil {
		cancel()
		return err
	}

	go s.handleAnnouncements(ctx, eventCh)
	log.L().Info().Msg("subscribed to cross-instance announcements")
	return nil
}

func (s *signalService) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// handleAnnouncements re-broadcasts stream lifecycle events published
// by other server instances to the clients connected here.
func (s *signalService) handleAnnouncements(ctx context.Context, eventCh <-chan *pubsub.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventCh:
			if !ok {
				return
			}
			if event.Origin == s.instanceID {
				continue
			}
			s.processAnnouncement(event)
		}
	}
}

func (s *signalService) processAnnouncement(event *pubsub.Event) {
	l := log.L()

	switch event.Type {
	case pubsub.EventStreamStarted:
		var payload pubsub.StreamStartedAnnouncement
		if err := event.UnmarshalPayload(&payload); err != nil {
			l.Error().Err(err).Msg("failed to unmarshal stream_started announcement")
			return
		}
		s.sender.Broadcast(&domain.LiveStreamStartedMessage{
			Type:        domain.MsgTypeLiveStreamStarted,
			StreamID:    payload.StreamID,
			Title:       payload.Title,
			Description: payload.Description,
			StreamerID:  payload.StreamerID,
			ViewerCount: 0,
			StartedAt:   payload.StartedAt,
		})

	case pubsub.EventStreamEnded:
		var payload pubsub.StreamEndedAnnouncement
		if err := event.UnmarshalPayload(&payload); err != nil {
			l.Error().Err(err).Msg("failed to unmarshal stream_ended announcement")
			return
		}
		s.sender.Broadcast(&domain.LiveStreamEndedMessage{
			Type:     domain.MsgTypeLiveStreamEnded,
			StreamID: payload.StreamID,
		})
	}
}
