package services

import (
	"context"
	"strings"

	"mindbloom-backend/application/ports"
	"mindbloom-backend/domain/core/entities"
	"mindbloom-backend/pkg/common"
)

// ChatRequest is one message to the assistant.
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// DefaultChatReply answers messages no rule matches.
const DefaultChatReply = "I'm here to help you! How can I assist you today?"

// chatRules are checked in order; the first phrase found in the message wins.
var chatRules = []struct {
	phrase string
	reply  string
}{
	{"hello", "Hello! How are you feeling today?"},
	{"how are you", "I'm doing well, thank you for asking! How about you?"},
	{"memory", "I'm here to help you with your memories. Would you like to share something?"},
	{"help", "I'm your memory companion. I can help you with journaling, memories, and calendar events."},
}

// Reply returns the rule-based answer to message.
func Reply(message string) string {
	lower := strings.ToLower(message)
	for _, rule := range chatRules {
		if strings.Contains(lower, rule.phrase) {
			return rule.reply
		}
	}
	return DefaultChatReply
}

// ChatService answers chat messages and keeps the history.
type ChatService struct {
	Base
	repo ports.ChatRepository
}

// NewChatService creates the service.
func NewChatService(base Base, repo ports.ChatRepository) *ChatService {
	return &ChatService{Base: base, repo: repo}
}

// Send answers message and stores the exchange.
func (s *ChatService) Send(ctx context.Context, actor *Actor, req ChatRequest) (*entities.ChatEntry, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	entry := &entities.ChatEntry{
		ID:        newID(),
		UserID:    actor.UserID,
		Message:   req.Message,
		Response:  Reply(req.Message),
		CreatedAt: s.now(),
	}
	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// History returns the caller's exchanges, newest first.
func (s *ChatService) History(ctx context.Context, actor *Actor, params common.ListParams) ([]*entities.ChatEntry, *common.PaginationInfo, error) {
	if err := requireActor(actor); err != nil {
		return nil, nil, err
	}
	all, err := s.repo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, nil, err
	}
	page, info := common.Page(all, params)
	return page, info, nil
}
