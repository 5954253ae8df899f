package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"anoa.com/survivehub/internal/entity"
	"anoa.com/survivehub/internal/modules/notification/dto"
	notifRepo "anoa.com/survivehub/internal/modules/notification/repository"
	"anoa.com/survivehub/pkg/metrics"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	RetryQueueKey   = "notifications:retry"
	MaxRetryAttempt = 5
)

// Channel is the redis pubsub channel carrying realtime notifications for userID.
func Channel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID.String())
}

// Notifier is the write side used by the content and social modules.
type Notifier interface {
	// Notify stores the event for its recipient. A failed insert is queued for retry and
	// the error returned for logging; callers never roll back their own mutation.
	Notify(ctx context.Context, ev dto.Event) error
}

type NotificationService interface {
	Notifier
	List(ctx context.Context, p entity.Principal) ([]entity.Notification, error)
	Clear(ctx context.Context, p entity.Principal) error
	MarkSeen(ctx context.Context, p entity.Principal) error
	Status(ctx context.Context, p entity.Principal) (*dto.StatusResponse, error)
	// DrainRetry re-runs queued events once each and returns how many were delivered.
	DrainRetry(ctx context.Context) (int, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
	log         *zap.SugaredLogger
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client, log *zap.SugaredLogger) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		log:         log,
	}
}

func (s *notificationService) Notify(ctx context.Context, ev dto.Event) error {
	if err := s.deliver(ctx, ev); err != nil {
		metrics.Notifications.WithLabelValues(ev.Action, "failed").Inc()
		s.enqueueRetry(ctx, ev)
		return fmt.Errorf("notify %s: %w", ev.NotifyID, err)
	}
	return nil
}

func (s *notificationService) deliver(ctx context.Context, ev dto.Event) error {
	n := &entity.Notification{
		Action:        ev.Action,
		ActorID:       ev.ActorID,
		Medium:        ev.Medium,
		MediumRef:     ev.MediumRef,
		MediumOwnerID: ev.MediumOwnerID,
		NotifyID:      ev.NotifyID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	metrics.Notifications.WithLabelValues(ev.Action, "created").Inc()

	s.publish(ctx, n)
	return nil
}

// publish pushes the stored notification, with actor resolved, to the recipient's live sockets.
func (s *notificationService) publish(ctx context.Context, n *entity.Notification) {
	if s.redisClient == nil {
		return
	}

	full, err := s.repo.FindByID(ctx, n.ID)
	if err != nil {
		full = n
	}
	payload, err := json.Marshal(full)
	if err != nil {
		return
	}
	if err := s.redisClient.Publish(ctx, Channel(n.NotifyID), payload).Err(); err != nil {
		s.log.Warnw("notification publish failed", "notify_id", n.NotifyID, "error", err)
	}
}

func (s *notificationService) enqueueRetry(ctx context.Context, ev dto.Event) {
	if s.redisClient == nil {
		return
	}

	ev.Attempt++
	if ev.Attempt >= MaxRetryAttempt {
		metrics.Notifications.WithLabelValues(ev.Action, "dropped").Inc()
		s.log.Warnw("notification dropped after retries", "action", ev.Action, "notify_id", ev.NotifyID, "attempts", ev.Attempt)
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := s.redisClient.LPush(ctx, RetryQueueKey, payload).Err(); err != nil {
		s.log.Warnw("notification retry enqueue failed", "notify_id", ev.NotifyID, "error", err)
		return
	}
	metrics.Notifications.WithLabelValues(ev.Action, "queued").Inc()
}

func (s *notificationService) DrainRetry(ctx context.Context) (int, error) {
	if s.redisClient == nil {
		return 0, nil
	}

	// Bound the drain by the queue length so events re-queued in this pass wait for the next one.
	pending, err := s.redisClient.LLen(ctx, RetryQueueKey).Result()
	if err != nil {
		return 0, err
	}

	delivered := 0
	for i := int64(0); i < pending; i++ {
		payload, err := s.redisClient.RPop(ctx, RetryQueueKey).Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return delivered, err
		}

		var ev dto.Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			s.log.Warnw("discarding malformed retry payload", "error", err)
			continue
		}
		if err := s.deliver(ctx, ev); err != nil {
			s.enqueueRetry(ctx, ev)
			continue
		}
		delivered++
	}
	return delivered, nil
}

func (s *notificationService) List(ctx context.Context, p entity.Principal) ([]entity.Notification, error) {
	return s.repo.ListByRecipient(ctx, p.UserID)
}

func (s *notificationService) Clear(ctx context.Context, p entity.Principal) error {
	return s.repo.DeleteByRecipient(ctx, p.UserID)
}

func (s *notificationService) MarkSeen(ctx context.Context, p entity.Principal) error {
	return s.repo.SetSeen(ctx, p.UserID, true)
}

func (s *notificationService) Status(ctx context.Context, p entity.Principal) (*dto.StatusResponse, error) {
	seen, err := s.repo.IsSeen(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountByRecipient(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return &dto.StatusResponse{SeenNotifications: seen, Count: count}, nil
}
