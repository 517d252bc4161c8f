package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// SubscriptionService manages user-to-author follows.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Subscribe follows an author and returns the author record. Following
// yourself is rejected before any state is checked; following someone
// twice is a conflict, with the unique (user, author) index catching
// concurrent subscribes.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, authorID uuid.UUID) (*models.User, error) {
	if userID == authorID {
		return nil, invalidf("you cannot subscribe to yourself")
	}

	var author models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&author, "id = ?", authorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("user not found")
			}
			return err
		}
		var count int64
		if err := tx.Model(&models.Follow{}).
			Where("user_id = ? AND author_id = ?", userID, authorID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return conflict("already subscribed to this author")
		}
		follow := models.Follow{UserID: userID, AuthorID: authorID}
		if err := tx.Create(&follow).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflict("already subscribed to this author")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &author, nil
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("user not found")
		}
		return err
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("you are not subscribed to this author")
	}
	return nil
}

// Authors returns one page of the authors the user subscribes to, in
// subscription order, plus the total subscription count.
func (s *SubscriptionService) Authors(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.User, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}

	var authors []models.User
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", userID).
		Order("follows.created_at, follows.id").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&authors).Error
	if err != nil {
		return nil, 0, err
	}
	return authors, total, nil
}

// IsSubscribed reports which of the given authors the user follows.
func (s *SubscriptionService) IsSubscribed(ctx context.Context, userID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	subscribed := make(map[uuid.UUID]bool, len(authorIDs))
	if len(authorIDs) == 0 {
		return subscribed, nil
	}
	var found []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		subscribed[id] = true
	}
	return subscribed, nil
}
