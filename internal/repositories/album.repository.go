package repositories

import (
	"context"
	"errors"
	"soundsocial/internal/apperrors"
	"soundsocial/internal/database"
	"soundsocial/internal/logger"
	"soundsocial/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AlbumRepository interface {
	GetByMBID(ctx context.Context, mbid string) (*models.Album, error)
	GetByMBIDWithArtist(ctx context.Context, mbid string) (*models.Album, error)
	GetByMBIDs(ctx context.Context, mbids []string) (map[string]*models.Album, error)
	GetByArtist(ctx context.Context, artistID uuid.UUID) ([]models.Album, error)
	CreateOrGet(ctx context.Context, album *models.Album) (*models.Album, bool, error)
}

type albumRepository struct {
	db  database.DB
	log logger.Logger
}

func NewAlbumRepository(db database.DB) AlbumRepository {
	return &albumRepository{
		db:  db,
		log: logger.New("albumRepository"),
	}
}

func (r *albumRepository) GetByMBID(ctx context.Context, mbid string) (*models.Album, error) {
	log := r.log.Function("GetByMBID")

	var album models.Album
	if err := r.db.SQLWithContext(ctx).First(&album, "mbid = ?", mbid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.StoreFailure("get album by mbid", log.Err("failed to get album by MBID", err, "mbid", mbid))
	}

	return &album, nil
}

// GetByMBIDWithArtist returns the album joined with its owning artist, or
// nil when no local row exists.
func (r *albumRepository) GetByMBIDWithArtist(ctx context.Context, mbid string) (*models.Album, error) {
	log := r.log.Function("GetByMBIDWithArtist")

	var album models.Album
	err := r.db.SQLWithContext(ctx).
		Preload("Artist").
		First(&album, "mbid = ?", mbid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.StoreFailure("get album with artist", log.Err("failed to get album with artist", err, "mbid", mbid))
	}

	return &album, nil
}

// GetByMBIDs is the single batched lookup the search overlay uses.
func (r *albumRepository) GetByMBIDs(ctx context.Context, mbids []string) (map[string]*models.Album, error) {
	log := r.log.Function("GetByMBIDs")

	result := make(map[string]*models.Album, len(mbids))
	if len(mbids) == 0 {
		return result, nil
	}

	var albums []*models.Album
	if err := r.db.SQLWithContext(ctx).Where("mbid IN ?", mbids).Find(&albums).Error; err != nil {
		return nil, apperrors.StoreFailure("batch get albums", log.Err("failed to get albums by MBIDs", err, "count", len(mbids)))
	}

	for _, album := range albums {
		result[album.MBID] = album
	}

	return result, nil
}

func (r *albumRepository) GetByArtist(ctx context.Context, artistID uuid.UUID) ([]models.Album, error) {
	log := r.log.Function("GetByArtist")

	var albums []models.Album
	err := r.db.SQLWithContext(ctx).
		Where("artist_id = ?", artistID).
		Order("release_date DESC").
		Find(&albums).Error
	if err != nil {
		return nil, apperrors.StoreFailure("get albums by artist", log.Err("failed to get albums by artist", err, "artistID", artistID))
	}

	return albums, nil
}

// CreateOrGet inserts the album; created reports whether this call won the
// insert. On a unique violation the concurrently inserted row is re-read
// and returned.
func (r *albumRepository) CreateOrGet(ctx context.Context, album *models.Album) (*models.Album, bool, error) {
	log := r.log.Function("CreateOrGet")

	err := r.db.SQLWithContext(ctx).Create(album).Error
	if err == nil {
		return album, true, nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		log.Info("album already inserted by concurrent request", "mbid", album.MBID)
		existing, getErr := r.GetByMBID(ctx, album.MBID)
		if getErr != nil {
			return nil, false, getErr
		}
		if existing == nil {
			return nil, false, apperrors.StoreFailure("album vanished after duplicate insert", nil)
		}
		return existing, false, nil
	}

	return nil, false, apperrors.StoreFailure("create album", log.Err("failed to create album", err, "mbid", album.MBID))
}
