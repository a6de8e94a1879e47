package repositories

import (
	"context"
	"soundsocial/internal/apperrors"
	"soundsocial/internal/database"
	"soundsocial/internal/logger"
	"soundsocial/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

type TrackRepository interface {
	GetByAlbum(ctx context.Context, albumID uuid.UUID) ([]models.Track, error)
	InsertIgnoringDuplicates(ctx context.Context, tracks []*models.Track) error
}

type trackRepository struct {
	db  database.DB
	log logger.Logger
}

func NewTrackRepository(db database.DB) TrackRepository {
	return &trackRepository{
		db:  db,
		log: logger.New("trackRepository"),
	}
}

// GetByAlbum returns the album's tracks in track-number order.
func (r *trackRepository) GetByAlbum(ctx context.Context, albumID uuid.UUID) ([]models.Track, error) {
	log := r.log.Function("GetByAlbum")

	var tracks []models.Track
	err := r.db.SQLWithContext(ctx).
		Where("album_id = ?", albumID).
		Order("track_number").
		Find(&tracks).Error
	if err != nil {
		return nil, apperrors.StoreFailure("get tracks by album", log.Err("failed to get tracks by album", err, "albumID", albumID))
	}

	return tracks, nil
}

// InsertIgnoringDuplicates persists tracks idempotently: a row whose MBID
// already exists is silently skipped rather than duplicated or errored.
func (r *trackRepository) InsertIgnoringDuplicates(ctx context.Context, tracks []*models.Track) error {
	log := r.log.Function("InsertIgnoringDuplicates")

	if len(tracks) == 0 {
		return nil
	}

	err := r.db.SQLWithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mbid"}},
		DoNothing: true,
	}).Create(&tracks).Error
	if err != nil {
		return apperrors.StoreFailure("insert tracks", log.Err("failed to insert tracks", err, "count", len(tracks)))
	}

	return nil
}
