package domain

import "time"

// EmailSummary is a cached AI summary row, keyed by user and message id
type EmailSummary struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserKey   string    `json:"user_key" gorm:"uniqueIndex:idx_user_email_unique;not null"`
	EmailID   string    `json:"email_id" gorm:"uniqueIndex:idx_user_email_unique;not null"`
	Summary   string    `json:"summary" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (EmailSummary) TableName() string {
	return "email_summaries"
}
