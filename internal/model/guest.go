package model

import (
	"time"

	"github.com/google/uuid"
)

// Guest 受邀賓客，憑 invitation token 回覆
type Guest struct {
	ID        int       `json:"id" db:"id"`
	Token     uuid.UUID `json:"token" db:"token"`
	Email     string    `json:"email" db:"email"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateGuestRequest 建立賓客請求
type CreateGuestRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

// ImportGuestsRequest 批次匯入賓客請求
type ImportGuestsRequest struct {
	Guests []CreateGuestRequest `json:"guests" binding:"required,min=1,dive"`
}

// ImportGuestsResult 批次匯入結果，重複 email 會被略過
type ImportGuestsResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
