package services

import (
	"context"
	"soundsocial/internal/apperrors"
	"soundsocial/internal/logger"
	"soundsocial/internal/models"
	"soundsocial/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	minRatingValue = 0.5
	maxRatingValue = 10.0
)

var ratingStep = decimal.NewFromFloat(0.5)

// RatingService owns a user's ratings and the derived aggregate columns on
// albums and tracks. The rating upsert and the aggregate recompute commit
// as one transaction that first locks the entity row, so concurrent
// submissions for the same entity serialize and never recompute from a
// stale count.
type RatingService struct {
	ratingRepo  repositories.RatingRepository
	transaction *TransactionService
	log         logger.Logger
}

func NewRatingService(repos repositories.Repository, transaction *TransactionService) *RatingService {
	return &RatingService{
		ratingRepo:  repos.Rating,
		transaction: transaction,
		log:         logger.New("RatingService"),
	}
}

// ValidateRatingValue accepts values in [0.5, 10] in 0.5 steps. The step
// check runs on decimals; float modulo misclassifies values like 9.5.
func ValidateRatingValue(value float64) error {
	if value < minRatingValue || value > maxRatingValue {
		return apperrors.InvalidInput("rating must be between 0.5 and 10")
	}
	if !decimal.NewFromFloat(value).Mod(ratingStep).IsZero() {
		return apperrors.InvalidInput("rating must be in 0.5 increments")
	}
	return nil
}

// SubmitRating inserts or overwrites the user's rating for the entity and
// recomputes the entity's average and count in the same transaction.
func (s *RatingService) SubmitRating(
	ctx context.Context,
	userID uuid.UUID,
	entityType models.EntityType,
	entityID uuid.UUID,
	value float64,
) (*models.Rating, error) {
	log := s.log.Function("SubmitRating")

	if !entityType.Valid() {
		return nil, apperrors.InvalidInput("entity type must be album or track")
	}
	if err := ValidateRatingValue(value); err != nil {
		return nil, err
	}

	exists, err := s.ratingRepo.EntityExists(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NotFound("rated entity does not exist")
	}

	rating := &models.Rating{
		UserID:     userID,
		EntityType: entityType,
		EntityID:   entityID,
		Value:      value,
	}

	// The entity row is locked before the upsert so that concurrent
	// submissions for the same entity serialize on it; each recompute then
	// observes every previously committed rating.
	err = s.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := s.ratingRepo.LockEntity(ctx, tx, entityType, entityID); err != nil {
			return err
		}
		if err := s.ratingRepo.Upsert(ctx, tx, rating); err != nil {
			return err
		}
		return s.ratingRepo.RecomputeAggregates(ctx, tx, entityType, entityID)
	})
	if err != nil {
		return nil, err
	}

	log.Info("rating submitted",
		"userID", userID,
		"entityType", entityType,
		"entityID", entityID,
		"value", value,
	)

	return s.ratingRepo.Get(ctx, userID, entityType, entityID)
}

// GetRating is a pure read; a missing rating returns nil without error.
func (s *RatingService) GetRating(
	ctx context.Context,
	userID uuid.UUID,
	entityType models.EntityType,
	entityID uuid.UUID,
) (*models.Rating, error) {
	if !entityType.Valid() {
		return nil, apperrors.InvalidInput("entity type must be album or track")
	}

	return s.ratingRepo.Get(ctx, userID, entityType, entityID)
}

// DeleteRating removes the user's rating if present and recomputes the
// aggregates, with the average defaulting to 0 when no ratings remain.
// Deleting an absent rating is not an error.
func (s *RatingService) DeleteRating(
	ctx context.Context,
	userID uuid.UUID,
	entityType models.EntityType,
	entityID uuid.UUID,
) error {
	log := s.log.Function("DeleteRating")

	if !entityType.Valid() {
		return apperrors.InvalidInput("entity type must be album or track")
	}

	err := s.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := s.ratingRepo.LockEntity(ctx, tx, entityType, entityID); err != nil {
			return err
		}
		if err := s.ratingRepo.Delete(ctx, tx, userID, entityType, entityID); err != nil {
			return err
		}
		return s.ratingRepo.RecomputeAggregates(ctx, tx, entityType, entityID)
	})
	if err != nil {
		return err
	}

	log.Info("rating deleted", "userID", userID, "entityType", entityType, "entityID", entityID)
	return nil
}
