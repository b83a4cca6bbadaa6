package handler

import "github.com/chatwire/chat-system/internal/core/ports"

type sendMessageRequest struct {
	SenderID   string `json:"senderId"`
	Message    string `json:"message" validate:"required"`
	ReceiverID string `json:"receiverId,omitempty"`
	GroupID    string `json:"groupId,omitempty"`
}

type conversationResponse struct {
	Messages []ports.ConversationMessage `json:"messages"`
}
