package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chatwire/chat-system/internal/api/metrics"
	"github.com/chatwire/chat-system/internal/core/ports"
)

// ChatHandler handles HTTP requests for the conversation store.
type ChatHandler struct {
	service ports.ChatService
}

func NewChatHandler(service ports.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// Send handles POST /chat/send.
func (h *ChatHandler) Send(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	senderID, err := requireSelf(c, req.SenderID)
	if err != nil {
		return err
	}

	msg, err := h.service.Send(c.Request().Context(), ports.SendInput{
		SenderID:   senderID,
		Body:       req.Message,
		ReceiverID: req.ReceiverID,
		GroupID:    req.GroupID,
	})
	if err != nil {
		return err
	}

	kind := "direct"
	if msg.IsGroup() {
		kind = "group"
	}
	metrics.MessagesSentTotal.WithLabelValues(kind).Inc()

	return c.JSON(http.StatusCreated, envelope{Result: msg})
}

// Fetch handles GET /chat/:currentUserId/:type/:selectedId.
// type is "user" for a direct conversation, "group" for a group one.
func (h *ChatHandler) Fetch(c echo.Context) error {
	currentUserID, err := requireSelf(c, c.Param("currentUserId"))
	if err != nil {
		return err
	}

	mode := ports.RetrieveMode(c.Param("type"))
	if mode != ports.RetrieveDirect && mode != ports.RetrieveGroup {
		return echo.NewHTTPError(http.StatusBadRequest, "type must be user or group")
	}

	messages, err := h.service.Retrieve(c.Request().Context(), currentUserID, c.Param("selectedId"), mode)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, envelope{
		Message: "Messages retrieved successfully",
		Result:  conversationResponse{Messages: messages},
	})
}

// Delete handles DELETE /chat/delete/:messageId/:senderId.
func (h *ChatHandler) Delete(c echo.Context) error {
	requesterID, err := requireSelf(c, c.Param("senderId"))
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), requesterID, c.Param("messageId")); err != nil {
		return err
	}

	metrics.MessagesDeletedTotal.Inc()
	return c.JSON(http.StatusOK, envelope{Message: "Message deleted successfully!"})
}
