package models

import (
	"github.com/google/uuid"
)

// Album mirrors a MusicBrainz release-group. ReleaseDate is stored already
// normalized to a full calendar date where the source allowed it; cover art
// is cached locally because the cover-art source is unreliable. AvgRating
// and RatingCount are derived values owned by the rating service.
type Album struct {
	BaseUUIDModel
	MBID        string    `gorm:"type:uuid;not null;uniqueIndex:idx_albums_mbid"   json:"mbid"`
	ArtistID    uuid.UUID `gorm:"type:uuid;not null;index:idx_albums_artist"       json:"artistId"`
	Title       string    `gorm:"type:text;not null"                               json:"title"`
	ReleaseDate *string   `gorm:"type:text"                                        json:"releaseDate,omitempty"`
	AlbumType   *string   `gorm:"type:text"                                        json:"albumType,omitempty"`
	CoverURL    *string   `gorm:"type:text"                                        json:"coverUrl,omitempty"`
	AvgRating   float64   `gorm:"type:numeric(4,2);not null;default:0"             json:"avgRating"`
	RatingCount int       `gorm:"type:int;not null;default:0"                      json:"ratingCount"`

	Artist *Artist `gorm:"foreignKey:ArtistID" json:"artist,omitempty"`
	Tracks []Track `gorm:"foreignKey:AlbumID"  json:"tracks,omitempty"`
}
