package models

import (
	"github.com/lib/pq"
)

// Artist is the locally persisted row for a MusicBrainz artist. Rows are
// created on the first resolution that misses the store and refreshed in
// place on later resolutions; this subsystem never deletes them.
type Artist struct {
	BaseUUIDModel
	MBID       string         `gorm:"type:uuid;not null;uniqueIndex:idx_artists_mbid" json:"mbid"`
	Name       string         `gorm:"type:text;not null"                              json:"name"`
	Country    *string        `gorm:"type:text"                                       json:"country,omitempty"`
	FormedYear *string        `gorm:"type:text"                                       json:"formedYear,omitempty"`
	Genres     pq.StringArray `gorm:"type:text[]"                                     json:"genres"`

	Albums []Album `gorm:"foreignKey:ArtistID" json:"albums,omitempty"`
}
