package models

import (
	"github.com/google/uuid"
)

// EntityType is the closed set of things a user can rate. The aggregate
// recompute dispatches on it to one of two statically-known statements;
// identifiers are never interpolated from user input.
type EntityType string

const (
	EntityTypeAlbum EntityType = "album"
	EntityTypeTrack EntityType = "track"
)

// Table returns the table carrying the aggregate columns for this entity
// type. ok is false for unrecognized values.
func (e EntityType) Table() (string, bool) {
	switch e {
	case EntityTypeAlbum:
		return "albums", true
	case EntityTypeTrack:
		return "tracks", true
	default:
		return "", false
	}
}

func (e EntityType) Valid() bool {
	_, ok := e.Table()
	return ok
}

// Rating is one user's score for an album or track, unique per
// (user, entity type, entity). Re-submission updates the row in place.
type Rating struct {
	BaseUUIDModel
	UserID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_user_entity,priority:1" json:"userId"`
	EntityType EntityType `gorm:"type:text;not null;uniqueIndex:idx_ratings_user_entity,priority:2" json:"entityType"`
	EntityID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_user_entity,priority:3;index:idx_ratings_entity" json:"entityId"`
	Value      float64    `gorm:"type:numeric(3,1);not null"                                        json:"value"`
}
