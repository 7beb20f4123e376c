package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

// InquiryStorage implements the InquiryStorage interface for Badger
type InquiryStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewInquiryStorage creates a new InquiryStorage instance
func NewInquiryStorage(db *BadgerDB, logger arbor.ILogger) interfaces.InquiryStorage {
	return &InquiryStorage{
		db:     db,
		logger: logger,
	}
}

func (s *InquiryStorage) Save(ctx context.Context, inquiry *models.Inquiry) error {
	if inquiry.ID == "" {
		return fmt.Errorf("inquiry ID is required")
	}
	if inquiry.CreatedAt.IsZero() {
		inquiry.CreatedAt = time.Now()
	}

	if err := s.db.Store().Upsert(inquiry.ID, inquiry); err != nil {
		return fmt.Errorf("failed to save inquiry: %w", err)
	}
	return nil
}

func (s *InquiryStorage) ListByUser(ctx context.Context, userID string) ([]*models.Inquiry, error) {
	var inquiries []models.Inquiry
	err := s.db.Store().Find(&inquiries, badgerhold.Where("UserID").Eq(userID).SortBy("CreatedAt").Reverse())
	if err != nil {
		return nil, fmt.Errorf("failed to list inquiries: %w", err)
	}
	result := make([]*models.Inquiry, len(inquiries))
	for i := range inquiries {
		result[i] = &inquiries[i]
	}
	return result, nil
}
