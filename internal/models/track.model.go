package models

import (
	"github.com/google/uuid"
)

// Track mirrors a MusicBrainz recording. TrackNumber is nil when the
// source position did not parse as an integer.
type Track struct {
	BaseUUIDModel
	MBID        string    `gorm:"type:uuid;not null;uniqueIndex:idx_tracks_mbid" json:"mbid"`
	AlbumID     uuid.UUID `gorm:"type:uuid;not null;index:idx_tracks_album"      json:"albumId"`
	ArtistID    uuid.UUID `gorm:"type:uuid;not null;index:idx_tracks_artist"     json:"artistId"`
	Title       string    `gorm:"type:text;not null"                             json:"title"`
	TrackNumber *int      `gorm:"type:int"                                       json:"trackNumber,omitempty"`
	DurationMs  *int      `gorm:"type:int"                                       json:"durationMs,omitempty"`
	AvgRating   float64   `gorm:"type:numeric(4,2);not null;default:0"           json:"avgRating"`
	RatingCount int       `gorm:"type:int;not null;default:0"                    json:"ratingCount"`

	Album *Album `gorm:"foreignKey:AlbumID" json:"album,omitempty"`
}
