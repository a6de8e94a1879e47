package repositories

import (
	"soundsocial/internal/database"
)

type Repository struct {
	Artist ArtistRepository
	Album  AlbumRepository
	Track  TrackRepository
	Rating RatingRepository
}

func New(db database.DB) Repository {
	return Repository{
		Artist: NewArtistRepository(db),
		Album:  NewAlbumRepository(db),
		Track:  NewTrackRepository(db),
		Rating: NewRatingRepository(db),
	}
}
