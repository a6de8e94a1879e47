package repositories

import (
	"context"
	"errors"
	"soundsocial/internal/apperrors"
	"soundsocial/internal/database"
	"soundsocial/internal/logger"
	"soundsocial/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ArtistRepository interface {
	GetByMBID(ctx context.Context, mbid string) (*models.Artist, error)
	CreateOrGet(ctx context.Context, artist *models.Artist) (*models.Artist, error)
	UpsertMeta(ctx context.Context, artist *models.Artist) (*models.Artist, error)
}

type artistRepository struct {
	db  database.DB
	log logger.Logger
}

func NewArtistRepository(db database.DB) ArtistRepository {
	return &artistRepository{
		db:  db,
		log: logger.New("artistRepository"),
	}
}

// GetByMBID returns nil without error when no artist matches.
func (r *artistRepository) GetByMBID(ctx context.Context, mbid string) (*models.Artist, error) {
	log := r.log.Function("GetByMBID")

	var artist models.Artist
	if err := r.db.SQLWithContext(ctx).First(&artist, "mbid = ?", mbid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.StoreFailure("get artist by mbid", log.Err("failed to get artist by MBID", err, "mbid", mbid))
	}

	return &artist, nil
}

// CreateOrGet inserts the artist. When a concurrent resolution already
// inserted a row for the same MBID, the winner's row is re-read and
// returned instead of surfacing the unique violation.
func (r *artistRepository) CreateOrGet(ctx context.Context, artist *models.Artist) (*models.Artist, error) {
	log := r.log.Function("CreateOrGet")

	err := r.db.SQLWithContext(ctx).Create(artist).Error
	if err == nil {
		return artist, nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		log.Info("artist already inserted by concurrent request", "mbid", artist.MBID)
		existing, getErr := r.GetByMBID(ctx, artist.MBID)
		if getErr != nil {
			return nil, getErr
		}
		if existing == nil {
			return nil, apperrors.StoreFailure("artist vanished after duplicate insert", nil)
		}
		return existing, nil
	}

	return nil, apperrors.StoreFailure("create artist", log.Err("failed to create artist", err, "mbid", artist.MBID))
}

// UpsertMeta inserts the artist or, when the MBID is already present,
// refreshes the remotely sourced fields in place.
func (r *artistRepository) UpsertMeta(ctx context.Context, artist *models.Artist) (*models.Artist, error) {
	log := r.log.Function("UpsertMeta")

	err := r.db.SQLWithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mbid"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "genres", "country", "formed_year", "updated_at"}),
	}).Create(artist).Error
	if err != nil {
		return nil, apperrors.StoreFailure("upsert artist", log.Err("failed to upsert artist", err, "mbid", artist.MBID))
	}

	// The conflict path does not backfill the existing row's id.
	existing, err := r.GetByMBID(ctx, artist.MBID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperrors.StoreFailure("artist missing after upsert", nil)
	}

	return existing, nil
}
