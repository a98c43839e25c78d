package model

import "time"

// RSVPStatus 報名狀態類型
type RSVPStatus string

const (
	RSVPStatusConfirmed  RSVPStatus = "confirmed"
	RSVPStatusDeclined   RSVPStatus = "declined"
	RSVPStatusWaitlisted RSVPStatus = "waitlisted"
)

// IsValid 驗證狀態是否為賓客可提交的狀態
func (s RSVPStatus) IsValid() bool {
	switch s {
	case RSVPStatusConfirmed, RSVPStatusDeclined, RSVPStatusWaitlisted:
		return true
	}
	return false
}

// CheckInState 入場狀態，與容量帳本無關
type CheckInState string

const (
	CheckInNotArrived CheckInState = "not_arrived"
	CheckInCheckedIn  CheckInState = "checked_in"
	CheckInNoShow     CheckInState = "no_show"
)

func (s CheckInState) IsValid() bool {
	switch s {
	case CheckInNotArrived, CheckInCheckedIn, CheckInNoShow:
		return true
	}
	return false
}

// Registration 報名紀錄，每組 (guest, event) 僅一筆。
// seat_number 僅在 status = confirmed 時存在。
type Registration struct {
	ID            int          `json:"id" db:"id"`
	GuestID       int          `json:"guest_id" db:"guest_id"`
	EventID       int          `json:"event_id" db:"event_id"`
	Status        RSVPStatus   `json:"status" db:"status"`
	SeatNumber    *int         `json:"seat_number,omitempty" db:"seat_number"`
	RequestedAt   time.Time    `json:"requested_at" db:"requested_at"`
	Notes         *string      `json:"notes,omitempty" db:"notes"`
	CheckInStatus CheckInState `json:"check_in_status" db:"check_in_status"`
	CheckInTime   *time.Time   `json:"check_in_time,omitempty" db:"check_in_time"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// IsConfirmed 是否持有座位
func (r *Registration) IsConfirmed() bool {
	return r.Status == RSVPStatusConfirmed
}

// RSVPRequest 賓客回覆請求
type RSVPRequest struct {
	EventID string  `json:"event_id" binding:"required"`
	Status  string  `json:"status" binding:"required"`
	Notes   *string `json:"notes"`
}

// RSVPResult 回覆結果。Status 可能與請求不同（confirmed 被降級為 waitlisted）
type RSVPResult struct {
	Status     RSVPStatus `json:"status"`
	SeatNumber *int       `json:"seat_number,omitempty"`
	Message    string     `json:"message"`
}

// WithdrawResult 取消結果，含被遞補的賓客（若有）
type WithdrawResult struct {
	ReleasedStatus RSVPStatus     `json:"released_status"`
	Promoted       *PromotedGuest `json:"promoted,omitempty"`
}

// PromotedGuest 候補遞補結果，交由呼叫端決定是否通知
type PromotedGuest struct {
	GuestID        int `json:"guest_id"`
	RegistrationID int `json:"registration_id"`
	SeatNumber     int `json:"seat_number"`
}

// RegistrationStatus 賓客目前的報名與活動容量快照
type RegistrationStatus struct {
	Registration *Registration    `json:"registration,omitempty"`
	Event        *Event           `json:"event"`
	Capacity     CapacitySnapshot `json:"capacity"`
}

// RegistrationDetail 管理端查詢用，附賓客資訊
type RegistrationDetail struct {
	Registration
	GuestEmail     string `json:"guest_email" db:"guest_email"`
	GuestFirstName string `json:"guest_first_name" db:"guest_first_name"`
	GuestLastName  string `json:"guest_last_name" db:"guest_last_name"`
}
