package repositories

import (
	"context"
	"errors"
	"soundsocial/internal/apperrors"
	"soundsocial/internal/database"
	"soundsocial/internal/logger"
	"soundsocial/internal/models"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The recompute target table is dispatched from the closed EntityType
// variant to one of these two statements; identifiers are never built from
// request input.
const (
	recomputeAlbumSQL = `UPDATE albums SET
		avg_rating = COALESCE((SELECT ROUND(AVG(value)::numeric, 2) FROM ratings WHERE entity_type = 'album' AND entity_id = albums.id), 0),
		rating_count = (SELECT COUNT(*) FROM ratings WHERE entity_type = 'album' AND entity_id = albums.id)
		WHERE id = ?`

	recomputeTrackSQL = `UPDATE tracks SET
		avg_rating = COALESCE((SELECT ROUND(AVG(value)::numeric, 2) FROM ratings WHERE entity_type = 'track' AND entity_id = tracks.id), 0),
		rating_count = (SELECT COUNT(*) FROM ratings WHERE entity_type = 'track' AND entity_id = tracks.id)
		WHERE id = ?`

	lockAlbumSQL = `SELECT id FROM albums WHERE id = ? FOR UPDATE`
	lockTrackSQL = `SELECT id FROM tracks WHERE id = ? FOR UPDATE`
)

type RatingRepository interface {
	Get(ctx context.Context, userID uuid.UUID, entityType models.EntityType, entityID uuid.UUID) (*models.Rating, error)
	EntityExists(ctx context.Context, entityType models.EntityType, entityID uuid.UUID) (bool, error)

	// LockEntity, Upsert, Delete and RecomputeAggregates run on the
	// supplied transaction so the write and the aggregate recompute commit
	// as one unit. LockEntity must run before the write: it serializes
	// concurrent transactions for the same entity on the entity row, so
	// the second transaction's recompute statement takes its snapshot
	// after the first has committed. Without the lock the blocked UPDATE
	// re-checks only the target row and its count/avg subqueries still
	// read the pre-commit snapshot, silently dropping the other
	// transaction's rating from the aggregates.
	LockEntity(ctx context.Context, tx *gorm.DB, entityType models.EntityType, entityID uuid.UUID) error
	Upsert(ctx context.Context, tx *gorm.DB, rating *models.Rating) error
	Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID, entityType models.EntityType, entityID uuid.UUID) error
	RecomputeAggregates(ctx context.Context, tx *gorm.DB, entityType models.EntityType, entityID uuid.UUID) error
}

type ratingRepository struct {
	db  database.DB
	log logger.Logger
}

func NewRatingRepository(db database.DB) RatingRepository {
	return &ratingRepository{
		db:  db,
		log: logger.New("ratingRepository"),
	}
}

func (r *ratingRepository) Get(
	ctx context.Context,
	userID uuid.UUID,
	entityType models.EntityType,
	entityID uuid.UUID,
) (*models.Rating, error) {
	log := r.log.Function("Get")

	var rating models.Rating
	err := r.db.SQLWithContext(ctx).
		First(&rating, "user_id = ? AND entity_type = ? AND entity_id = ?", userID, entityType, entityID).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.StoreFailure("get rating", log.Err("failed to get rating", err, "userID", userID, "entityID", entityID))
	}

	return &rating, nil
}

// EntityExists reports whether the rated entity has a local row. Ratings
// must never reference entities the catalog does not hold.
func (r *ratingRepository) EntityExists(
	ctx context.Context,
	entityType models.EntityType,
	entityID uuid.UUID,
) (bool, error) {
	log := r.log.Function("EntityExists")

	var count int64
	query := r.db.SQLWithContext(ctx)
	switch entityType {
	case models.EntityTypeAlbum:
		query = query.Model(&models.Album{})
	case models.EntityTypeTrack:
		query = query.Model(&models.Track{})
	default:
		return false, apperrors.InvalidInput("unrecognized entity type")
	}

	if err := query.Where("id = ?", entityID).Count(&count).Error; err != nil {
		return false, apperrors.StoreFailure("check entity exists", log.Err("failed to check entity", err, "entityID", entityID))
	}

	return count > 0, nil
}

// LockEntity takes a row lock on the rated album or track for the duration
// of tx.
func (r *ratingRepository) LockEntity(
	ctx context.Context,
	tx *gorm.DB,
	entityType models.EntityType,
	entityID uuid.UUID,
) error {
	log := r.log.Function("LockEntity")

	var stmt string
	switch entityType {
	case models.EntityTypeAlbum:
		stmt = lockAlbumSQL
	case models.EntityTypeTrack:
		stmt = lockTrackSQL
	default:
		return apperrors.InvalidInput("unrecognized entity type")
	}

	if err := tx.WithContext(ctx).Exec(stmt, entityID).Error; err != nil {
		return apperrors.StoreFailure("lock entity", log.Err("failed to lock entity row", err, "entityType", entityType, "entityID", entityID))
	}

	return nil
}

func (r *ratingRepository) Upsert(ctx context.Context, tx *gorm.DB, rating *models.Rating) error {
	log := r.log.Function("Upsert")

	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "entity_type"}, {Name: "entity_id"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      rating.Value,
			"updated_at": time.Now(),
		}),
	}).Create(rating).Error
	if err != nil {
		return apperrors.StoreFailure("upsert rating", log.Err("failed to upsert rating", err, "userID", rating.UserID, "entityID", rating.EntityID))
	}

	return nil
}

// Delete is idempotent: removing an absent rating is not an error.
func (r *ratingRepository) Delete(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	entityType models.EntityType,
	entityID uuid.UUID,
) error {
	log := r.log.Function("Delete")

	err := tx.WithContext(ctx).
		Where("user_id = ? AND entity_type = ? AND entity_id = ?", userID, entityType, entityID).
		Delete(&models.Rating{}).Error
	if err != nil {
		return apperrors.StoreFailure("delete rating", log.Err("failed to delete rating", err, "userID", userID, "entityID", entityID))
	}

	return nil
}

// RecomputeAggregates rewrites the entity's avg_rating and rating_count
// from the rating rows visible inside the supplied transaction, so the
// recompute observes this transaction's own upsert or delete.
func (r *ratingRepository) RecomputeAggregates(
	ctx context.Context,
	tx *gorm.DB,
	entityType models.EntityType,
	entityID uuid.UUID,
) error {
	log := r.log.Function("RecomputeAggregates")

	var stmt string
	switch entityType {
	case models.EntityTypeAlbum:
		stmt = recomputeAlbumSQL
	case models.EntityTypeTrack:
		stmt = recomputeTrackSQL
	default:
		return apperrors.InvalidInput("unrecognized entity type")
	}

	if err := tx.WithContext(ctx).Exec(stmt, entityID).Error; err != nil {
		return apperrors.StoreFailure("recompute aggregates", log.Err("failed to recompute aggregates", err, "entityType", entityType, "entityID", entityID))
	}

	return nil
}
