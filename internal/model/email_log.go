package model

import "time"

// EmailKind 通知種類
type EmailKind string

const (
	EmailKindConfirmation EmailKind = "confirmation"
	EmailKindPromotion    EmailKind = "promotion"
	EmailKindWaitlisted   EmailKind = "waitlisted"
)

// Notification 待寄送的通知。核心只負責發佈，寄送結果不影響報名操作
type Notification struct {
	GuestID    int       `json:"guest_id"`
	EventID    int       `json:"event_id"`
	Kind       EmailKind `json:"kind"`
	SeatNumber *int      `json:"seat_number,omitempty"`
}

// EmailLog 通知寄送紀錄，由 notification worker 寫入
type EmailLog struct {
	ID      int       `json:"id" db:"id"`
	GuestID int       `json:"guest_id" db:"guest_id"`
	EventID int       `json:"event_id" db:"event_id"`
	Kind    EmailKind `json:"kind" db:"kind"`
	Status  string    `json:"status" db:"status"`
	SentAt  time.Time `json:"sent_at" db:"sent_at"`
}
