package queue

import (
	"context"

	"event-rsvp-service/internal/model"
)

type Delivery struct {
	Data *model.Notification
	Ack  func()
	Nack func(requeue bool)
}

type NotificationQueue interface {
	// 發送通知到隊列
	PublishNotification(ctx context.Context, notification *model.Notification) error
	// 訂閱通知隊列
	SubscribeNotifications(ctx context.Context) (<-chan Delivery, error)
}

type NotificationQueueImpl struct {
	// 使用 Go channel 來模擬 MQ 隊列
	ch chan *model.Notification
}

func NewNotificationQueue(bufferSize int) NotificationQueue {
	return &NotificationQueueImpl{
		ch: make(chan *model.Notification, bufferSize),
	}
}

func (q *NotificationQueueImpl) PublishNotification(ctx context.Context, notification *model.Notification) error {
	q.ch <- notification
	return nil
}

func (q *NotificationQueueImpl) SubscribeNotifications(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case notification, ok := <-q.ch:
				if !ok {
					return
				}

				out <- Delivery{
					Data: notification,
					Ack:  func() { /* 記憶體版不用做特別動作 */ },
					Nack: func(requeue bool) {
						if requeue {
							q.ch <- notification // 簡單模擬重回隊列
						}
					},
				}
			}
		}
	}()

	return out, nil
}
