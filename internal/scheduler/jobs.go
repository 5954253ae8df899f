package scheduler

import (
	"context"

	notifService "anoa.com/survivehub/internal/modules/notification/service"
	userService "anoa.com/survivehub/internal/modules/user/service"
	"go.uber.org/zap"
)

func TokenSweepJob(auth userService.AuthService, log *zap.SugaredLogger) Job {
	return FuncJob{
		JobName:     "expired-token-sweep",
		JobSchedule: "@hourly",
		Run: func(ctx context.Context) error {
			n, err := auth.SweepExpiredTokens(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				log.Infow("expired tokens cleared", "users", n)
			}
			return nil
		},
	}
}

func NotificationRetryJob(notifications notifService.NotificationService, log *zap.SugaredLogger) Job {
	return FuncJob{
		JobName:     "notification-retry",
		JobSchedule: "@every 1m",
		Run: func(ctx context.Context) error {
			n, err := notifications.DrainRetry(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				log.Infow("queued notifications delivered", "count", n)
			}
			return nil
		},
	}
}
