package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/chatwire/chat-system/internal/core/domain"
	"github.com/chatwire/chat-system/internal/core/ports"
)

func TestChatHandlerSend(t *testing.T) {
	stub := &stubChatService{sendMsg: &domain.Message{
		ID:         "m1",
		SenderID:   "u1",
		ReceiverID: "u2",
		Body:       "hello",
		Timestamp:  time.Now().UTC(),
	}}
	h := NewChatHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/chat/send",
		`{"senderId":"u1","receiverId":"u2","message":"hello"}`, "u1")
	if err := h.Send(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if stub.sendInput.SenderID != "u1" || stub.sendInput.ReceiverID != "u2" || stub.sendInput.Body != "hello" {
		t.Fatalf("unexpected service input %+v", stub.sendInput)
	}

	body := decodeEnvelope(t, rec)
	result := body["result"].(map[string]any)
	if result["message"] != "hello" || result["id"] != "m1" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestChatHandlerSendImpersonation(t *testing.T) {
	h := NewChatHandler(&stubChatService{})

	c, _ := newTestContext(t, http.MethodPost, "/chat/send",
		`{"senderId":"someone-else","receiverId":"u2","message":"hi"}`, "u1")
	requireHTTPError(t, h.Send(c), http.StatusForbidden)
}

func TestChatHandlerSendUnauthenticated(t *testing.T) {
	h := NewChatHandler(&stubChatService{})

	c, _ := newTestContext(t, http.MethodPost, "/chat/send",
		`{"receiverId":"u2","message":"hi"}`, "")
	requireHTTPError(t, h.Send(c), http.StatusUnauthorized)
}

func TestChatHandlerSendValidation(t *testing.T) {
	h := NewChatHandler(&stubChatService{})

	c, _ := newTestContext(t, http.MethodPost, "/chat/send",
		`{"senderId":"u1","receiverId":"u2"}`, "u1")
	requireHTTPError(t, h.Send(c), http.StatusBadRequest)
}

func TestChatHandlerFetch(t *testing.T) {
	stub := &stubChatService{retrieved: []ports.ConversationMessage{
		{Message: domain.Message{ID: "m1", SenderID: "u1", ReceiverID: "u2", Body: "hi"}, Mine: true},
	}}
	h := NewChatHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/", "", "u1")
	c.SetPath("/chat/:currentUserId/:type/:selectedId")
	c.SetParamNames("currentUserId", "type", "selectedId")
	c.SetParamValues("u1", "user", "u2")

	if err := h.Fetch(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := decodeEnvelope(t, rec)
	result := body["result"].(map[string]any)
	messages := result["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	first := messages[0].(map[string]any)
	if first["sent_by_me"] != true {
		t.Fatalf("expected sent_by_me flag, got %+v", first)
	}
}

func TestChatHandlerFetchBadType(t *testing.T) {
	h := NewChatHandler(&stubChatService{})

	c, _ := newTestContext(t, http.MethodGet, "/", "", "u1")
	c.SetPath("/chat/:currentUserId/:type/:selectedId")
	c.SetParamNames("currentUserId", "type", "selectedId")
	c.SetParamValues("u1", "channel", "u2")

	requireHTTPError(t, h.Fetch(c), http.StatusBadRequest)
}

func TestChatHandlerFetchOtherUsersConversation(t *testing.T) {
	h := NewChatHandler(&stubChatService{})

	c, _ := newTestContext(t, http.MethodGet, "/", "", "u1")
	c.SetPath("/chat/:currentUserId/:type/:selectedId")
	c.SetParamNames("currentUserId", "type", "selectedId")
	c.SetParamValues("u9", "user", "u2")

	requireHTTPError(t, h.Fetch(c), http.StatusForbidden)
}

func TestChatHandlerDelete(t *testing.T) {
	stub := &stubChatService{}
	h := NewChatHandler(stub)

	c, rec := newTestContext(t, http.MethodDelete, "/", "", "u1")
	c.SetPath("/chat/delete/:messageId/:senderId")
	c.SetParamNames("messageId", "senderId")
	c.SetParamValues("m1", "u1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.deletedBy != "u1" || stub.deletedID != "m1" {
		t.Fatalf("unexpected delete call: %s %s", stub.deletedBy, stub.deletedID)
	}
}

func TestChatHandlerDeleteNotFoundPassesThrough(t *testing.T) {
	h := NewChatHandler(&stubChatService{deleteErr: domain.ErrMessageNotFound})

	c, _ := newTestContext(t, http.MethodDelete, "/", "", "u1")
	c.SetPath("/chat/delete/:messageId/:senderId")
	c.SetParamNames("messageId", "senderId")
	c.SetParamValues("m1", "u1")

	if err := h.Delete(c); err != domain.ErrMessageNotFound {
		t.Fatalf("expected domain error passthrough, got %v", err)
	}
}
