package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"anoa.com/survivehub/internal/entity"
	chatDto "anoa.com/survivehub/internal/modules/chat/dto"
	chatRepo "anoa.com/survivehub/internal/modules/chat/repository"
	userRepo "anoa.com/survivehub/internal/modules/user/repository"
	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/sanitize"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrChatNotFound   = fmt.Errorf("chat not found: %w", apperror.ErrNotFound)
	ErrNotParticipant = fmt.Errorf("you are not part of this chat: %w", apperror.ErrForbidden)
	ErrSelfChat       = fmt.Errorf("you cannot start a chat with yourself: %w", apperror.ErrBadRequest)
	ErrChatDisabled   = apperror.New(http.StatusServiceUnavailable, "chat is not available", nil)
)

type ChatService interface {
	StartChat(ctx context.Context, p entity.Principal, recipientID uuid.UUID, text string) (*entity.Chat, error)
	SendMessage(ctx context.Context, p entity.Principal, chatID string, text string) (*entity.Message, error)
	// OpenChat returns the whole conversation and marks it read for p.
	OpenChat(ctx context.Context, p entity.Principal, chatID string) (*chatDto.ChatResponse, error)
	ListChats(ctx context.Context, p entity.Principal) ([]chatDto.ChatSummary, error)
	CloseChat(ctx context.Context, p entity.Principal, chatID string) error
	ReopenChat(ctx context.Context, p entity.Principal, chatID string) error
	UnreadCount(ctx context.Context, p entity.Principal) (int64, error)
}

type chatService struct {
	repo  chatRepo.ChatRepository
	users userRepo.UserRepository
	log   *zap.SugaredLogger
}

// NewChatService accepts a nil repo when MongoDB is not configured; every call then fails with ErrChatDisabled.
func NewChatService(repo chatRepo.ChatRepository, users userRepo.UserRepository, log *zap.SugaredLogger) ChatService {
	return &chatService{
		repo:  repo,
		users: users,
		log:   log,
	}
}

func cleanText(text string) (string, error) {
	text = sanitize.Plain(text)
	if text == "" {
		return "", fmt.Errorf("message must not be empty: %w", apperror.ErrInvalidInput)
	}
	return text, nil
}

func (s *chatService) StartChat(ctx context.Context, p entity.Principal, recipientID uuid.UUID, text string) (*entity.Chat, error) {
	if s.repo == nil {
		return nil, ErrChatDisabled
	}
	if recipientID == p.UserID {
		return nil, ErrSelfChat
	}
	text, err := cleanText(text)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.FindByID(ctx, recipientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipient not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	me, other := p.UserID.String(), recipientID.String()
	msg := entity.Message{Author: me, Text: text, SentAt: time.Now().UTC()}

	existing, err := s.repo.FindBetween(ctx, me, other)
	switch {
	case err == nil:
		if err := s.repo.PushMessage(ctx, existing.ID, msg); err != nil {
			return nil, err
		}
		return s.repo.FindByID(ctx, existing.ID)
	case !errors.Is(err, chatRepo.ErrNotFound):
		return nil, err
	}

	chat := &entity.Chat{
		Participants: []entity.ChatParticipant{
			{User: me, Read: true},
			{User: other, Read: false},
		},
		Messages: []entity.Message{msg},
		Open:     true,
	}
	if err := s.repo.Create(ctx, chat); err != nil {
		return nil, err
	}
	s.log.Infow("chat started", "chat_id", chat.ID.Hex(), "from", me, "to", other)
	return chat, nil
}

// load fetches the chat and checks p takes part in it.
func (s *chatService) load(ctx context.Context, p entity.Principal, chatID string) (*entity.Chat, error) {
	if s.repo == nil {
		return nil, ErrChatDisabled
	}
	id, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return nil, ErrChatNotFound
	}

	chat, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, chatRepo.ErrNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, err
	}
	if chat.Participant(p.UserID.String()) == nil {
		return nil, ErrNotParticipant
	}
	return chat, nil
}

func (s *chatService) SendMessage(ctx context.Context, p entity.Principal, chatID string, text string) (*entity.Message, error) {
	chat, err := s.load(ctx, p, chatID)
	if err != nil {
		return nil, err
	}
	text, err = cleanText(text)
	if err != nil {
		return nil, err
	}

	msg := entity.Message{Author: p.UserID.String(), Text: text, SentAt: time.Now().UTC()}
	if err := s.repo.PushMessage(ctx, chat.ID, msg); err != nil {
		if errors.Is(err, chatRepo.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return &msg, nil
}

// counterpart resolves the other participant's public profile. A deleted account yields nil.
func (s *chatService) counterpart(ctx context.Context, chat *entity.Chat, me string) *entity.User {
	for _, part := range chat.Participants {
		if part.User == me {
			continue
		}
		id, err := uuid.Parse(part.User)
		if err != nil {
			return nil
		}
		users, err := s.users.FindByIDs(ctx, []uuid.UUID{id})
		if err != nil || len(users) == 0 {
			return nil
		}
		return &users[0]
	}
	return nil
}

func (s *chatService) OpenChat(ctx context.Context, p entity.Principal, chatID string) (*chatDto.ChatResponse, error) {
	chat, err := s.load(ctx, p, chatID)
	if err != nil {
		return nil, err
	}

	me := p.UserID.String()
	if err := s.repo.MarkRead(ctx, chat.ID, me); err != nil {
		return nil, err
	}
	chat.Participant(me).Read = true

	return &chatDto.ChatResponse{Chat: chat, With: s.counterpart(ctx, chat, me)}, nil
}

func (s *chatService) ListChats(ctx context.Context, p entity.Principal) ([]chatDto.ChatSummary, error) {
	if s.repo == nil {
		return nil, ErrChatDisabled
	}

	me := p.UserID.String()
	chats, err := s.repo.ListOpen(ctx, me)
	if err != nil {
		return nil, err
	}

	others := make([]uuid.UUID, 0, len(chats))
	for i := range chats {
		for _, part := range chats[i].Participants {
			if part.User == me {
				continue
			}
			if id, err := uuid.Parse(part.User); err == nil {
				others = append(others, id)
			}
		}
	}
	users, err := s.users.FindByIDs(ctx, others)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.User, len(users))
	for i := range users {
		byID[users[i].ID.String()] = &users[i]
	}

	summaries := make([]chatDto.ChatSummary, 0, len(chats))
	for i := range chats {
		chat := &chats[i]
		summary := chatDto.ChatSummary{
			ID:        chat.ID.Hex(),
			Unread:    !chat.Participant(me).Read,
			UpdatedAt: chat.UpdatedAt,
		}
		for _, part := range chat.Participants {
			if part.User != me {
				summary.With = byID[part.User]
			}
		}
		if n := len(chat.Messages); n > 0 {
			summary.LastMessage = &chat.Messages[n-1]
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *chatService) setOpen(ctx context.Context, p entity.Principal, chatID string, open bool) error {
	chat, err := s.load(ctx, p, chatID)
	if err != nil {
		return err
	}
	return s.repo.SetOpen(ctx, chat.ID, p.UserID.String(), open)
}

func (s *chatService) CloseChat(ctx context.Context, p entity.Principal, chatID string) error {
	return s.setOpen(ctx, p, chatID, false)
}

func (s *chatService) ReopenChat(ctx context.Context, p entity.Principal, chatID string) error {
	return s.setOpen(ctx, p, chatID, true)
}

func (s *chatService) UnreadCount(ctx context.Context, p entity.Principal) (int64, error) {
	if s.repo == nil {
		return 0, ErrChatDisabled
	}
	return s.repo.CountUnread(ctx, p.UserID.String())
}
