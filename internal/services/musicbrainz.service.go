package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"soundsocial/config"
	"soundsocial/internal/apperrors"
	"soundsocial/internal/cache"
	"soundsocial/internal/logger"
	"soundsocial/internal/types"
	"soundsocial/internal/utils"
	"strconv"
	"time"
)

const (
	remoteTimeout = 5 * time.Second
	searchLimit   = 10
	maxGenreTags  = 5
)

// Raw MusicBrainz payloads. Decoded once here; consumers only ever see the
// mapped types.
type mbTag struct {
	Name string `json:"name"`
}

type mbLifeSpan struct {
	Begin string `json:"begin"`
}

type mbCreditedArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type mbArtistCredit struct {
	Artist mbCreditedArtist `json:"artist"`
}

type mbArtist struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Country       string           `json:"country"`
	Tags          []mbTag          `json:"tags"`
	LifeSpan      mbLifeSpan       `json:"life-span"`
	ReleaseGroups []mbReleaseGroup `json:"release-groups"`
}

type mbArtistSearchResponse struct {
	Artists []mbArtist `json:"artists"`
}

type mbReleaseGroup struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	PrimaryType      string           `json:"primary-type"`
	FirstReleaseDate string           `json:"first-release-date"`
	ArtistCredit     []mbArtistCredit `json:"artist-credit"`
	Releases         []mbRelease      `json:"releases"`
}

type mbReleaseGroupSearchResponse struct {
	ReleaseGroups []mbReleaseGroup `json:"release-groups"`
}

type mbRelease struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Media []mbMedium `json:"media"`
}

type mbMedium struct {
	Tracks []mbReleaseTrack `json:"tracks"`
}

type mbReleaseTrack struct {
	Number    string      `json:"number"`
	Title     string      `json:"title"`
	Length    *int        `json:"length"`
	Recording mbRecording `json:"recording"`
}

type mbRecording struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Length       *int             `json:"length"`
	ArtistCredit []mbArtistCredit `json:"artist-credit"`
	Releases     []mbRelease      `json:"releases"`
}

type mbRecordingSearchResponse struct {
	Recordings []mbRecording `json:"recordings"`
}

type caaImage struct {
	Image      string `json:"image"`
	Thumbnails struct {
		Large string `json:"large"`
	} `json:"thumbnails"`
}

type caaResponse struct {
	Images []caaImage `json:"images"`
}

// MusicBrainzService wraps every outbound call to the metadata and
// cover-art services. Dispatch is serialized through the shared rate gate,
// each call carries a bounded timeout, and responses are memoized in the
// TTL cache under operation-namespaced keys, so a cache hit costs neither
// a delay nor a network call.
type MusicBrainzService struct {
	client    *http.Client
	baseURL   string
	coverURL  string
	userAgent string
	gate      *RateGateService
	cache     *cache.Cache[string, any]
	log       logger.Logger
}

func NewMusicBrainzService(
	config config.Config,
	gate *RateGateService,
	responseCache *cache.Cache[string, any],
) *MusicBrainzService {
	return &MusicBrainzService{
		client: &http.Client{
			Timeout: remoteTimeout,
		},
		baseURL:   config.MusicBrainzURL,
		coverURL:  config.CoverArtURL,
		userAgent: config.MusicBrainzUserAgent,
		gate:      gate,
		cache:     responseCache,
		log:       logger.New("MusicBrainzService"),
	}
}

func (s *MusicBrainzService) SearchArtists(ctx context.Context, query string) ([]types.ArtistSummary, error) {
	log := s.log.Function("SearchArtists")

	cacheKey := "searchArtists:" + query
	if cached, _, ok := s.cache.Get(cacheKey); ok {
		return cached.([]types.ArtistSummary), nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(searchLimit))
	params.Set("fmt", "json")

	var payload mbArtistSearchResponse
	if err := s.get(ctx, s.baseURL+"/artist", params, &payload); err != nil {
		return nil, log.Err("artist search failed", err, "query", query)
	}

	artists := make([]types.ArtistSummary, 0, len(payload.Artists))
	for _, artist := range payload.Artists {
		artists = append(artists, types.ArtistSummary{
			MBID:    artist.ID,
			Name:    artist.Name,
			Country: artist.Country,
			Genres:  tagNames(artist.Tags, len(artist.Tags)),
		})
	}

	s.cache.Set(cacheKey, artists)
	return artists, nil
}

func (s *MusicBrainzService) SearchAlbums(ctx context.Context, query string) ([]types.AlbumSummary, error) {
	log := s.log.Function("SearchAlbums")

	cacheKey := "searchAlbums:" + query
	if cached, _, ok := s.cache.Get(cacheKey); ok {
		return cached.([]types.AlbumSummary), nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("type", "album")
	params.Set("limit", strconv.Itoa(searchLimit))
	params.Set("fmt", "json")

	var payload mbReleaseGroupSearchResponse
	if err := s.get(ctx, s.baseURL+"/release-group", params, &payload); err != nil {
		return nil, log.Err("album search failed", err, "query", query)
	}

	albums := make([]types.AlbumSummary, 0, len(payload.ReleaseGroups))
	for _, group := range payload.ReleaseGroups {
		summary := types.AlbumSummary{
			MBID:        group.ID,
			Title:       group.Title,
			ReleaseDate: group.FirstReleaseDate,
			AlbumType:   group.PrimaryType,
		}
		if len(group.ArtistCredit) > 0 {
			summary.Artist = group.ArtistCredit[0].Artist.Name
			summary.ArtistMBID = group.ArtistCredit[0].Artist.ID
		}
		albums = append(albums, summary)
	}

	s.cache.Set(cacheKey, albums)
	return albums, nil
}

func (s *MusicBrainzService) SearchTracks(ctx context.Context, query string) ([]types.TrackSummary, error) {
	log := s.log.Function("SearchTracks")

	cacheKey := "searchTracks:" + query
	if cached, _, ok := s.cache.Get(cacheKey); ok {
		return cached.([]types.TrackSummary), nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(searchLimit))
	params.Set("fmt", "json")

	var payload mbRecordingSearchResponse
	if err := s.get(ctx, s.baseURL+"/recording", params, &payload); err != nil {
		return nil, log.Err("track search failed", err, "query", query)
	}

	tracks := make([]types.TrackSummary, 0, len(payload.Recordings))
	for _, recording := range payload.Recordings {
		summary := types.TrackSummary{
			MBID:       recording.ID,
			Title:      recording.Title,
			DurationMs: recording.Length,
		}
		if len(recording.ArtistCredit) > 0 {
			summary.Artist = recording.ArtistCredit[0].Artist.Name
			summary.ArtistMBID = recording.ArtistCredit[0].Artist.ID
		}
		if len(recording.Releases) > 0 {
			summary.Album = recording.Releases[0].Title
			summary.AlbumMBID = recording.Releases[0].ID
		}
		tracks = append(tracks, summary)
	}

	s.cache.Set(cacheKey, tracks)
	return tracks, nil
}

// GetFullAlbum resolves a release-group into album metadata, the ordered
// tracklist of its first release, and cover art. Cover-art failure leaves
// CoverURL nil rather than failing the album.
func (s *MusicBrainzService) GetFullAlbum(ctx context.Context, mbid string) (*types.AlbumDetail, error) {
	log := s.log.Function("GetFullAlbum")

	cacheKey := "fullAlbum:" + mbid
	if cached, _, ok := s.cache.Get(cacheKey); ok {
		detail := cached.(types.AlbumDetail)
		return &detail, nil
	}

	params := url.Values{}
	params.Set("inc", "artists+releases")
	params.Set("fmt", "json")

	var group mbReleaseGroup
	if err := s.get(ctx, s.baseURL+"/release-group/"+mbid, params, &group); err != nil {
		return nil, log.Err("release group fetch failed", err, "mbid", mbid)
	}

	detail := types.AlbumDetail{
		MBID:        group.ID,
		Title:       group.Title,
		ReleaseDate: group.FirstReleaseDate,
		AlbumType:   group.PrimaryType,
	}
	if len(group.ArtistCredit) > 0 {
		detail.Artist = group.ArtistCredit[0].Artist.Name
		detail.ArtistMBID = group.ArtistCredit[0].Artist.ID
	}

	// The provider splits one logical album into multiple releases; the
	// first release supplies the ordered tracklist.
	if len(group.Releases) > 0 {
		tracks, err := s.getReleaseTracks(ctx, group.Releases[0].ID)
		if err != nil {
			return nil, log.Err("release tracklist fetch failed", err, "mbid", mbid)
		}
		detail.Tracks = tracks
	}

	detail.CoverURL = s.GetCoverArt(ctx, mbid)

	s.cache.Set(cacheKey, detail)
	return &detail, nil
}

func (s *MusicBrainzService) getReleaseTracks(ctx context.Context, releaseID string) ([]types.TrackDetail, error) {
	params := url.Values{}
	params.Set("inc", "recordings")
	params.Set("fmt", "json")

	var release mbRelease
	if err := s.get(ctx, s.baseURL+"/release/"+releaseID, params, &release); err != nil {
		return nil, err
	}

	var tracks []types.TrackDetail
	for _, medium := range release.Media {
		for _, track := range medium.Tracks {
			detail := types.TrackDetail{
				MBID:        track.Recording.ID,
				Title:       track.Title,
				TrackNumber: parseTrackNumber(track.Number),
				DurationMs:  track.Length,
			}
			if detail.Title == "" {
				detail.Title = track.Recording.Title
			}
			if detail.DurationMs == nil {
				detail.DurationMs = track.Recording.Length
			}
			tracks = append(tracks, detail)
		}
	}

	return tracks, nil
}

// GetArtist fetches the artist with up to five genre tags and the
// discography filtered to album-type release groups.
func (s *MusicBrainzService) GetArtist(ctx context.Context, mbid string) (*types.ArtistDetail, error) {
	log := s.log.Function("GetArtist")

	cacheKey := "artist:" + mbid
	if cached, _, ok := s.cache.Get(cacheKey); ok {
		detail := cached.(types.ArtistDetail)
		return &detail, nil
	}

	params := url.Values{}
	params.Set("inc", "release-groups+tags")
	params.Set("fmt", "json")

	var artist mbArtist
	if err := s.get(ctx, s.baseURL+"/artist/"+mbid, params, &artist); err != nil {
		return nil, log.Err("artist fetch failed", err, "mbid", mbid)
	}

	detail := types.ArtistDetail{
		MBID:       artist.ID,
		Name:       artist.Name,
		Country:    artist.Country,
		FormedYear: utils.FormedYear(artist.LifeSpan.Begin),
		Genres:     tagNames(artist.Tags, maxGenreTags),
	}

	for _, group := range artist.ReleaseGroups {
		if group.PrimaryType != "Album" {
			continue
		}
		detail.ReleaseGroups = append(detail.ReleaseGroups, types.AlbumSummary{
			MBID:        group.ID,
			Title:       group.Title,
			ReleaseDate: group.FirstReleaseDate,
			AlbumType:   group.PrimaryType,
		})
	}

	s.cache.Set(cacheKey, detail)
	return &detail, nil
}

// GetCoverArt returns the album's cover URL, or nil when the archive has no
// art or the lookup fails; cover art is optional enrichment and never fails
// the enclosing operation. A confirmed "no art" answer is cached as a
// negative entry so repeated misses skip the network.
func (s *MusicBrainzService) GetCoverArt(ctx context.Context, mbid string) *string {
	log := s.log.Function("GetCoverArt")

	cacheKey := "coverArt:" + mbid
	if cached, negative, ok := s.cache.Get(cacheKey); ok {
		if negative {
			return nil
		}
		coverURL := cached.(string)
		return &coverURL
	}

	if err := s.gate.Wait(ctx); err != nil {
		log.Warn("rate gate wait cancelled", "mbid", mbid, "error", err)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.coverURL+"/release-group/"+mbid, nil)
	if err != nil {
		log.Warn("failed to build cover art request", "mbid", mbid, "error", err)
		return nil
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Warn("cover art request failed", "mbid", mbid, "error", err)
		return nil
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn("failed to close response body", "error", closeErr)
		}
	}()

	// Not every album has cover art; the archive answers 404 for those.
	if resp.StatusCode == http.StatusNotFound {
		s.cache.SetNegative(cacheKey)
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		log.Warn("cover art service error", "mbid", mbid, "statusCode", resp.StatusCode)
		return nil
	}

	var payload caaResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Warn("failed to decode cover art response", "mbid", mbid, "error", err)
		return nil
	}

	if len(payload.Images) == 0 {
		s.cache.SetNegative(cacheKey)
		return nil
	}

	coverURL := payload.Images[0].Thumbnails.Large
	if coverURL == "" {
		coverURL = payload.Images[0].Image
	}
	if coverURL == "" {
		s.cache.SetNegative(cacheKey)
		return nil
	}

	s.cache.Set(cacheKey, coverURL)
	return &coverURL
}

// get waits for a dispatch slot, issues the request, and decodes the JSON
// body into v. A 404 maps to NotFound; every other failure maps to
// RemoteUnavailable.
func (s *MusicBrainzService) get(ctx context.Context, rawURL string, params url.Values, v any) error {
	if err := s.gate.Wait(ctx); err != nil {
		return apperrors.RemoteUnavailable("cancelled waiting for dispatch slot", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+params.Encode(), nil)
	if err != nil {
		return apperrors.RemoteUnavailable("failed to build request", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return apperrors.RemoteUnavailable("request failed", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.log.Warn("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.NotFound("entity not found in metadata service")
	}

	if resp.StatusCode != http.StatusOK {
		return apperrors.RemoteUnavailable(
			fmt.Sprintf("metadata service returned status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return apperrors.RemoteUnavailable("failed to decode response", err)
	}

	return nil
}

func tagNames(tags []mbTag, limit int) []string {
	names := make([]string, 0, len(tags))
	for i, tag := range tags {
		if i >= limit {
			break
		}
		names = append(names, tag.Name)
	}
	return names
}

// parseTrackNumber returns nil for positions that are not plain integers
// (vinyl sides like "A1" are common); an unparseable number is absent, not
// an error.
func parseTrackNumber(number string) *int {
	n, err := strconv.Atoi(number)
	if err != nil {
		return nil
	}
	return &n
}
