package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/survivehub/internal/entity"
	notifDto "anoa.com/survivehub/internal/modules/notification/dto"
	notifService "anoa.com/survivehub/internal/modules/notification/service"
	socialRepo "anoa.com/survivehub/internal/modules/social/repository"
	userRepo "anoa.com/survivehub/internal/modules/user/repository"
	"anoa.com/survivehub/pkg/apperror"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrUserNotFound = fmt.Errorf("user not found: %w", apperror.ErrNotFound)

type SocialService interface {
	// Follow and Unfollow are idempotent and return whether the principal now follows username.
	Follow(ctx context.Context, p entity.Principal, username string) (bool, error)
	Unfollow(ctx context.Context, p entity.Principal, username string) (bool, error)
	Followers(ctx context.Context, username string) ([]entity.User, error)
	Following(ctx context.Context, username string) ([]entity.User, error)
}

type socialService struct {
	follows  socialRepo.FollowRepository
	users    userRepo.UserRepository
	notifier notifService.Notifier
	log      *zap.SugaredLogger
}

func NewSocialService(follows socialRepo.FollowRepository, users userRepo.UserRepository, notifier notifService.Notifier, log *zap.SugaredLogger) SocialService {
	return &socialService{
		follows:  follows,
		users:    users,
		notifier: notifier,
		log:      log,
	}
}

func (s *socialService) target(ctx context.Context, username string) (*entity.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *socialService) Follow(ctx context.Context, p entity.Principal, username string) (bool, error) {
	target, err := s.target(ctx, username)
	if err != nil {
		return false, err
	}
	if target.ID == p.UserID {
		return false, fmt.Errorf("you cannot follow yourself: %w", apperror.ErrBadRequest)
	}

	added, err := s.follows.Follow(ctx, p.UserID, target.ID)
	if err != nil {
		return false, err
	}

	if added && s.notifier != nil {
		err := s.notifier.Notify(ctx, notifDto.Event{
			Action:        entity.ActionFollowed,
			ActorID:       p.UserID,
			Medium:        entity.MediumUser,
			MediumRef:     target.ID,
			MediumOwnerID: target.ID,
			NotifyID:      target.ID,
		})
		if err != nil {
			s.log.Warnw("follow notification failed", "follower", p.UserID, "followee", target.ID, "error", err)
		}
	}
	return true, nil
}

func (s *socialService) Unfollow(ctx context.Context, p entity.Principal, username string) (bool, error) {
	target, err := s.target(ctx, username)
	if err != nil {
		return false, err
	}

	if _, err := s.follows.Unfollow(ctx, p.UserID, target.ID); err != nil {
		return false, err
	}
	return false, nil
}

func (s *socialService) Followers(ctx context.Context, username string) ([]entity.User, error) {
	return s.list(ctx, username, s.follows.Followers)
}

func (s *socialService) Following(ctx context.Context, username string) ([]entity.User, error) {
	return s.list(ctx, username, s.follows.Following)
}

func (s *socialService) list(ctx context.Context, username string, fetch func(context.Context, uuid.UUID) ([]entity.User, error)) ([]entity.User, error) {
	target, err := s.target(ctx, username)
	if err != nil {
		return nil, err
	}
	return fetch(ctx, target.ID)
}
