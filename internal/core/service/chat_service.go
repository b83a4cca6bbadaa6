package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatwire/chat-system/internal/core/domain"
	"github.com/chatwire/chat-system/internal/core/ports"
)

// ChatService orchestrates message creation, retrieval, and deletion, and
// triggers best-effort fan-out after each durable write.
type ChatService struct {
	messages  ports.MessageRepository
	groups    ports.GroupRepository
	publisher ports.EventPublisher
	log       zerolog.Logger

	// stampMu guards lastStamp so timestamps assigned by this process are
	// monotonically non-decreasing even when the wall clock steps backwards.
	stampMu   sync.Mutex
	lastStamp time.Time
}

func NewChatService(messages ports.MessageRepository, groups ports.GroupRepository, publisher ports.EventPublisher, log zerolog.Logger) *ChatService {
	return &ChatService{messages: messages, groups: groups, publisher: publisher, log: log}
}

// Send validates addressing, persists the message with a server-assigned
// timestamp, and publishes it to the delivery rooms. Fan-out is
// fire-and-forget: a publish that reaches nobody never fails the send.
func (s *ChatService) Send(ctx context.Context, input ports.SendInput) (*domain.Message, error) {
	if (input.ReceiverID == "") == (input.GroupID == "") {
		return nil, domain.ErrInvalidTarget
	}

	if input.GroupID != "" {
		group, err := s.groups.FindByID(ctx, input.GroupID)
		if err != nil {
			return nil, err
		}
		if !group.HasMember(input.SenderID) {
			return nil, domain.ErrForbidden
		}
	}

	msg := &domain.Message{
		SenderID:   input.SenderID,
		ReceiverID: input.ReceiverID,
		GroupID:    input.GroupID,
		Body:       input.Body,
		Timestamp:  s.nextStamp(),
	}

	created, err := s.messages.Create(ctx, msg)
	if err != nil {
		s.log.Error().Err(err).Str("sender_id", input.SenderID).Msg("failed to store message")
		return nil, fmt.Errorf("send message: %w", err)
	}

	eventType := ports.EventPrivateMessage
	if created.IsGroup() {
		eventType = ports.EventGroupMessage
	}
	for _, room := range created.Rooms() {
		s.publisher.Publish(room, ports.Event{Type: eventType, Room: room, Data: created})
	}

	s.log.Info().Str("message_id", created.ID).Str("sender_id", created.SenderID).Bool("group", created.IsGroup()).Msg("message sent")
	return created, nil
}

// Retrieve returns a conversation ordered by timestamp ascending, annotating
// each message with the sent-by-me flag for currentUserID.
func (s *ChatService) Retrieve(ctx context.Context, currentUserID, counterpartID string, mode ports.RetrieveMode) ([]ports.ConversationMessage, error) {
	var (
		stored []*domain.Message
		err    error
	)

	switch mode {
	case ports.RetrieveGroup:
		if _, err = s.groups.FindByID(ctx, counterpartID); err != nil {
			return nil, err
		}
		stored, err = s.messages.FindByGroup(ctx, counterpartID)
	case ports.RetrieveDirect:
		stored, err = s.messages.FindDirect(ctx, currentUserID, counterpartID)
	default:
		return nil, domain.ErrInvalidTarget
	}
	if err != nil {
		return nil, fmt.Errorf("retrieve messages: %w", err)
	}

	conversation := make([]ports.ConversationMessage, 0, len(stored))
	for _, m := range stored {
		conversation = append(conversation, ports.ConversationMessage{
			Message: *m,
			Mine:    m.SenderID == currentUserID,
		})
	}
	return conversation, nil
}

// Delete removes a message and emits a retraction event to its delivery
// rooms. Callers other than the sender get ErrMessageNotFound; the existence
// of someone else's message is not revealed.
func (s *ChatService) Delete(ctx context.Context, requesterID, messageID string) error {
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != requesterID {
		return domain.ErrMessageNotFound
	}

	if err := s.messages.Delete(ctx, messageID); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}

	for _, room := range msg.Rooms() {
		s.publisher.Publish(room, ports.Event{
			Type: ports.EventMessageDeleted,
			Room: room,
			Data: map[string]string{"message_id": messageID},
		})
	}

	s.log.Info().Str("message_id", messageID).Str("sender_id", requesterID).Msg("message deleted")
	return nil
}

func (s *ChatService) nextStamp() time.Time {
	s.stampMu.Lock()
	defer s.stampMu.Unlock()

	now := time.Now().UTC()
	if !now.After(s.lastStamp) {
		now = s.lastStamp.Add(time.Millisecond)
	}
	s.lastStamp = now
	return now
}
