package repository

import (
	"time"

	emaildomain "mailassist-backend/internal/email/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmailSummaryRepository caches AI summaries across fetches
type EmailSummaryRepository interface {
	// GetSummaries returns emailID -> summary for the ids that are cached
	GetSummaries(userKey string, emailIDs []string) (map[string]string, error)
	// SaveSummary saves or updates a summary for an email
	SaveSummary(userKey, emailID, summary string) error
	// DeleteSummary deletes a summary for an email
	DeleteSummary(userKey, emailID string) error
}

// emailSummaryRepository implements EmailSummaryRepository interface
type emailSummaryRepository struct {
	db *gorm.DB
}

// NewEmailSummaryRepository creates a new instance of emailSummaryRepository
func NewEmailSummaryRepository(db *gorm.DB) EmailSummaryRepository {
	return &emailSummaryRepository{
		db: db,
	}
}

func (r *emailSummaryRepository) GetSummaries(userKey string, emailIDs []string) (map[string]string, error) {
	if len(emailIDs) == 0 {
		return map[string]string{}, nil
	}

	var summaries []emaildomain.EmailSummary
	err := r.db.Where("user_key = ? AND email_id IN ?", userKey, emailIDs).Find(&summaries).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(summaries))
	for _, s := range summaries {
		result[s.EmailID] = s.Summary
	}
	return result, nil
}

// SaveSummary upserts on (user_key, email_id).
func (r *emailSummaryRepository) SaveSummary(userKey, emailID, summaryText string) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_key"}, {Name: "email_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"summary", "created_at"}),
	}).Create(&emaildomain.EmailSummary{
		ID:        uuid.New().String(),
		UserKey:   userKey,
		EmailID:   emailID,
		Summary:   summaryText,
		CreatedAt: time.Now(),
	}).Error
}

func (r *emailSummaryRepository) DeleteSummary(userKey, emailID string) error {
	return r.db.Where("user_key = ? AND email_id = ?", userKey, emailID).Delete(&emaildomain.EmailSummary{}).Error
}
