package handlers

import (
	"net/http"

	"mindbloom-backend/application/services"
	"mindbloom-backend/pkg/common"
	pkgerrors "mindbloom-backend/pkg/errors"

	"go.uber.org/zap"
)

// ChatHandler serves the companion chat.
type ChatHandler struct {
	base
	chat *services.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *services.ChatService, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{base: newBase(errs, logger), chat: chat}
}

// Send handles POST /ai/chat
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req services.ChatRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	entry, err := h.chat.Send(r.Context(), actor, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, entry)
}

// History handles GET /ai/chat/history?skip=&limit=
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entries, info, err := h.chat.History(r.Context(), actor, common.ExtractListParams(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.page(w, entries, info)
}
