package member

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hugh/member-sync/internal/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps member records in the members table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetMember(ctx context.Context, userID uuid.UUID) (*Record, error) {
	var m models.Member
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading member: %w", err)
	}
	return recordFromModel(&m), nil
}

// UpdateMember upserts the user's row; the last write wins.
func (s *GormStore) UpdateMember(ctx context.Context, userID uuid.UUID, email string, fields Fields) error {
	m := models.Member{
		UserID:     userID,
		Email:      email,
		Tel:        fields.Tel,
		Topic:      fields.Topic,
		Keyword:    fields.Keyword,
		Title:      fields.Title,
		SocialLink: fields.SocialLink,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "tel", "topic", "keyword", "title", "social_link", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("saving member: %w", err)
	}
	return nil
}

func recordFromModel(m *models.Member) *Record {
	return &Record{
		Email: m.Email,
		Fields: Fields{
			Tel:        m.Tel,
			Topic:      m.Topic,
			Keyword:    m.Keyword,
			Title:      m.Title,
			SocialLink: m.SocialLink,
		},
	}
}

var _ Store = (*GormStore)(nil)
