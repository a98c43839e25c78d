package model

import (
	"time"

	"github.com/google/uuid"
)

// SeatPolicy 座位分配策略
type SeatPolicy string

const (
	SeatPolicySequential SeatPolicy = "sequential"
	SeatPolicyRandom     SeatPolicy = "random"
)

func (p SeatPolicy) IsValid() bool {
	switch p {
	case SeatPolicySequential, SeatPolicyRandom:
		return true
	}
	return false
}

// Event 活動。confirmed_count / queued_count 是容量帳本，
// 只能透過 EventRepository 的條件式 UPDATE 變動，
// 且必須與 registrations 的寫入在同一個 transaction 內。
type Event struct {
	ID                   int        `json:"id" db:"id"`
	EventID              uuid.UUID  `json:"event_id" db:"event_id"`
	Name                 string     `json:"name" db:"name"`
	Description          *string    `json:"description,omitempty" db:"description"`
	Venue                *string    `json:"venue,omitempty" db:"venue"`
	EventDate            *time.Time `json:"event_date,omitempty" db:"event_date"`
	MaxCapacity          int        `json:"max_capacity" db:"max_capacity"`
	ConfirmedCount       int        `json:"confirmed_count" db:"confirmed_count"`
	QueuedCount          int        `json:"queued_count" db:"queued_count"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty" db:"registration_deadline"`
	SeatPolicy           SeatPolicy `json:"seat_policy" db:"seat_policy"`
	IsActive             bool       `json:"is_active" db:"is_active"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

// IsOpen 活動是否開放報名（active 且未過報名截止時間）
func (e *Event) IsOpen(now time.Time) bool {
	if !e.IsActive {
		return false
	}
	if e.RegistrationDeadline != nil && now.After(*e.RegistrationDeadline) {
		return false
	}
	return true
}

// SpotsRemaining 剩餘名額快照，僅供顯示，不可作為報名判斷依據
func (e *Event) SpotsRemaining() int {
	remaining := e.MaxCapacity - e.ConfirmedCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

type UpdateEventParams struct {
	Name                 *string
	Description          *string
	Venue                *string
	EventDate            *time.Time
	RegistrationDeadline *time.Time
	SeatPolicy           *SeatPolicy
	IsActive             *bool
}

// CapacitySnapshot 對外呈現的容量快照
type CapacitySnapshot struct {
	ConfirmedCount int  `json:"confirmed_count"`
	QueuedCount    int  `json:"queued_count"`
	MaxCapacity    int  `json:"max_capacity"`
	SpotsRemaining int  `json:"spots_remaining"`
	IsOpen         bool `json:"is_open"`
}

// EventStats 管理端統計：各狀態報名數與通知寄送數
type EventStats struct {
	Event       *Event         `json:"event"`
	RSVPCounts  map[string]int `json:"rsvp_counts"`
	EmailCounts map[string]int `json:"email_counts"`
}
