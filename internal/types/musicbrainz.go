package types

// Mapped shapes for data sourced from the MusicBrainz and Cover Art Archive
// services. The raw wire payloads are decoded and normalized once, at the
// client boundary; optional source fields stay optional here.

type ArtistSummary struct {
	MBID    string   `json:"mbid"`
	Name    string   `json:"name"`
	Country string   `json:"country,omitempty"`
	Genres  []string `json:"genres"`
}

// AlbumSummary is a release-group search hit. CoverURL, AvgRating,
// RatingCount and LocalID are overlay fields filled from the local store
// when the album is already tracked; search never persists anything.
type AlbumSummary struct {
	MBID        string   `json:"mbid"`
	Title       string   `json:"title"`
	Artist      string   `json:"artist,omitempty"`
	ArtistMBID  string   `json:"artistMbid,omitempty"`
	ReleaseDate string   `json:"releaseDate,omitempty"`
	AlbumType   string   `json:"albumType,omitempty"`
	CoverURL    *string  `json:"coverUrl,omitempty"`
	AvgRating   *float64 `json:"avgRating,omitempty"`
	RatingCount *int     `json:"ratingCount,omitempty"`
	LocalID     *string  `json:"localId,omitempty"`
}

type TrackSummary struct {
	MBID       string `json:"mbid"`
	Title      string `json:"title"`
	Artist     string `json:"artist,omitempty"`
	ArtistMBID string `json:"artistMbid,omitempty"`
	DurationMs *int   `json:"durationMs,omitempty"`
	Album      string `json:"album,omitempty"`
	AlbumMBID  string `json:"albumMbid,omitempty"`
}

type SearchResults struct {
	Artists []ArtistSummary `json:"artists"`
	Albums  []AlbumSummary  `json:"albums"`
	Tracks  []TrackSummary  `json:"tracks"`
}

// AlbumDetail is the composite result of resolving a release-group: the
// group's metadata, the ordered tracklist of its first release, and cover
// art when any exists.
type AlbumDetail struct {
	MBID        string        `json:"mbid"`
	Title       string        `json:"title"`
	Artist      string        `json:"artist"`
	ArtistMBID  string        `json:"artistMbid"`
	ReleaseDate string        `json:"releaseDate,omitempty"`
	AlbumType   string        `json:"albumType,omitempty"`
	CoverURL    *string       `json:"coverUrl,omitempty"`
	Tracks      []TrackDetail `json:"tracks"`
}

// TrackDetail carries one tracklist entry. TrackNumber is nil when the
// source position does not parse as an integer.
type TrackDetail struct {
	MBID        string `json:"mbid"`
	Title       string `json:"title"`
	TrackNumber *int   `json:"trackNumber,omitempty"`
	DurationMs  *int   `json:"durationMs,omitempty"`
}

// ArtistDetail is the remote view of an artist: identity fields, up to five
// genre tags, and the discography filtered to album-type release groups.
type ArtistDetail struct {
	MBID          string         `json:"mbid"`
	Name          string         `json:"name"`
	Country       string         `json:"country,omitempty"`
	FormedYear    string         `json:"formedYear,omitempty"`
	Genres        []string       `json:"genres"`
	ReleaseGroups []AlbumSummary `json:"releaseGroups"`
}
