package worker

import (
	"context"

	"event-rsvp-service/internal/model"
	"event-rsvp-service/internal/queue"
	"event-rsvp-service/internal/repository"
	"event-rsvp-service/pkg/logger"

	"go.uber.org/zap"
)

// NotificationWorker 把隊列中的通知變成 email_logs 紀錄。
// 實際寄信由外部系統處理，這裡只負責落地與結案。
type NotificationWorker interface {
	Start(ctx context.Context) error
}

type NotificationWorkerImpl struct {
	emailLogs repository.EmailLogRepository
	queue     queue.NotificationQueue
}

func NewNotificationWorker(emailLogs repository.EmailLogRepository, queue queue.NotificationQueue) NotificationWorker {
	return &NotificationWorkerImpl{
		emailLogs: emailLogs,
		queue:     queue,
	}
}

func (w *NotificationWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeNotifications(ctx)
	if err != nil {
		return err
	}

	go func() {
		log := logger.WithComponent("worker")
		for msg := range msgs {
			notification := msg.Data

			_, err := w.emailLogs.Create(ctx, &model.EmailLog{
				GuestID: notification.GuestID,
				EventID: notification.EventID,
				Kind:    notification.Kind,
				Status:  "sent",
			})
			if err != nil {
				// 資料庫暫時連不上，留給隊列重試
				log.Error("persist email log failed", zap.Error(err))
				msg.Nack(true)
				continue
			}

			log.Info("notification dispatched",
				zap.Int("guest_id", notification.GuestID),
				zap.Int("event_id", notification.EventID),
				zap.String("kind", string(notification.Kind)),
			)
			msg.Ack()
		}
	}()
	return nil
}
