package types

import (
	"soundsocial/internal/models"
)

// AlbumView is the merged album a resolver call returns: the local row, its
// owning artist, and the ordered tracklist. Once a local row exists it is
// authoritative; no freshness check triggers another remote fetch.
type AlbumView struct {
	models.Album
	ArtistName string         `json:"artistName"`
	ArtistMBID string         `json:"artistMbid"`
	Tracks     []models.Track `json:"tracks"`
}

// ReleaseEntry is one remote discography item, flagged with the local id
// when the release group is also tracked locally.
type ReleaseEntry struct {
	AlbumSummary
	Tracked bool `json:"tracked"`
}

// ArtistView merges the local artist row, the locally tracked albums with
// their cached cover and rating data, and the remote's complete
// discography.
type ArtistView struct {
	models.Artist
	Albums   []models.Album `json:"albums"`
	Releases []ReleaseEntry `json:"releases"`
}
