package services

import (
	"context"
	"soundsocial/internal/apperrors"
	"soundsocial/internal/logger"
	"soundsocial/internal/models"
	"soundsocial/internal/repositories"
	"soundsocial/internal/types"
	"soundsocial/internal/utils"
	"strings"
	"unicode/utf8"
)

const minSearchQueryLength = 2

// MetadataClient is the remote surface the resolver consumes; satisfied by
// MusicBrainzService and by test doubles.
type MetadataClient interface {
	SearchArtists(ctx context.Context, query string) ([]types.ArtistSummary, error)
	SearchAlbums(ctx context.Context, query string) ([]types.AlbumSummary, error)
	SearchTracks(ctx context.Context, query string) ([]types.TrackSummary, error)
	GetFullAlbum(ctx context.Context, mbid string) (*types.AlbumDetail, error)
	GetArtist(ctx context.Context, mbid string) (*types.ArtistDetail, error)
	GetCoverArt(ctx context.Context, mbid string) *string
}

// CatalogService reconciles the local catalog with the metadata service:
// local rows are checked first and are authoritative once created; misses
// fall back to the remote, get normalized, and are persisted before the
// merged view is returned.
type CatalogService struct {
	artistRepo repositories.ArtistRepository
	albumRepo  repositories.AlbumRepository
	trackRepo  repositories.TrackRepository
	remote     MetadataClient
	log        logger.Logger
}

func NewCatalogService(repos repositories.Repository, remote MetadataClient) *CatalogService {
	return &CatalogService{
		artistRepo: repos.Artist,
		albumRepo:  repos.Album,
		trackRepo:  repos.Track,
		remote:     remote,
		log:        logger.New("CatalogService"),
	}
}

// ResolveAlbum returns the album view for a release-group MBID, fetching
// and persisting it on first sight. Repeated resolutions return the same
// local row without touching the network.
func (s *CatalogService) ResolveAlbum(ctx context.Context, mbid string) (*types.AlbumView, error) {
	log := s.log.Function("ResolveAlbum")

	existing, err := s.albumRepo.GetByMBIDWithArtist(ctx, mbid)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.assembleAlbumView(ctx, existing)
	}

	detail, err := s.remote.GetFullAlbum(ctx, mbid)
	if err != nil {
		return nil, err
	}
	if detail.ArtistMBID == "" {
		return nil, apperrors.RemoteUnavailable("album payload missing artist credit", nil)
	}

	artist, err := s.artistRepo.GetByMBID(ctx, detail.ArtistMBID)
	if err != nil {
		return nil, err
	}
	if artist == nil {
		artist, err = s.artistRepo.CreateOrGet(ctx, &models.Artist{
			MBID: detail.ArtistMBID,
			Name: detail.Artist,
		})
		if err != nil {
			return nil, err
		}
	}

	album := &models.Album{
		MBID:        detail.MBID,
		ArtistID:    artist.ID,
		Title:       detail.Title,
		ReleaseDate: optional(utils.NormalizeReleaseDate(detail.ReleaseDate)),
		AlbumType:   optional(detail.AlbumType),
		CoverURL:    detail.CoverURL,
	}

	album, created, err := s.albumRepo.CreateOrGet(ctx, album)
	if err != nil {
		return nil, err
	}
	if !created {
		log.Info("album resolved concurrently, reusing winner's row", "mbid", mbid)
	}

	// Idempotent regardless of who won the insert race: duplicate track
	// MBIDs are skipped, not duplicated.
	tracks := make([]*models.Track, 0, len(detail.Tracks))
	for _, track := range detail.Tracks {
		tracks = append(tracks, &models.Track{
			MBID:        track.MBID,
			AlbumID:     album.ID,
			ArtistID:    artist.ID,
			Title:       track.Title,
			TrackNumber: track.TrackNumber,
			DurationMs:  track.DurationMs,
		})
	}
	if err := s.trackRepo.InsertIgnoringDuplicates(ctx, tracks); err != nil {
		return nil, err
	}

	album.Artist = artist
	return s.assembleAlbumView(ctx, album)
}

func (s *CatalogService) assembleAlbumView(ctx context.Context, album *models.Album) (*types.AlbumView, error) {
	tracks, err := s.trackRepo.GetByAlbum(ctx, album.ID)
	if err != nil {
		return nil, err
	}

	view := &types.AlbumView{
		Album:  *album,
		Tracks: tracks,
	}
	if album.Artist != nil {
		view.ArtistName = album.Artist.Name
		view.ArtistMBID = album.Artist.MBID
	}
	view.Album.Artist = nil
	view.Album.Tracks = nil

	return view, nil
}

// ResolveArtist returns the artist view for an artist MBID. On first sight
// the remote record is fetched with up to five genre tags and the
// album-type discography, and a row is persisted; the returned view flags
// which remote releases are also tracked locally.
func (s *CatalogService) ResolveArtist(ctx context.Context, mbid string) (*types.ArtistView, error) {
	artist, err := s.artistRepo.GetByMBID(ctx, mbid)
	if err != nil {
		return nil, err
	}

	var remoteReleases []types.AlbumSummary
	if artist == nil {
		detail, err := s.remote.GetArtist(ctx, mbid)
		if err != nil {
			return nil, err
		}

		artist, err = s.artistRepo.UpsertMeta(ctx, &models.Artist{
			MBID:       detail.MBID,
			Name:       detail.Name,
			Country:    optional(detail.Country),
			FormedYear: optional(detail.FormedYear),
			Genres:     detail.Genres,
		})
		if err != nil {
			return nil, err
		}

		remoteReleases = detail.ReleaseGroups
	}

	albums, err := s.albumRepo.GetByArtist(ctx, artist.ID)
	if err != nil {
		return nil, err
	}

	tracked := make(map[string]*models.Album, len(albums))
	for i := range albums {
		tracked[albums[i].MBID] = &albums[i]
	}

	releases := make([]types.ReleaseEntry, 0, len(remoteReleases))
	for _, release := range remoteReleases {
		entry := types.ReleaseEntry{AlbumSummary: release}
		if local, ok := tracked[release.MBID]; ok {
			entry.Tracked = true
			localID := local.ID.String()
			entry.LocalID = &localID
			entry.CoverURL = local.CoverURL
			entry.AvgRating = &local.AvgRating
			ratingCount := local.RatingCount
			entry.RatingCount = &ratingCount
		}
		releases = append(releases, entry)
	}

	view := &types.ArtistView{
		Artist:   *artist,
		Albums:   albums,
		Releases: releases,
	}
	view.Artist.Albums = nil

	return view, nil
}

// Search runs all three remote searches and overlays locally known album
// data onto the hits. Search enriches results but never writes to the
// store. Queries under two characters return empty results, not an error.
func (s *CatalogService) Search(ctx context.Context, query string) (*types.SearchResults, error) {
	log := s.log.Function("Search")

	results := &types.SearchResults{
		Artists: []types.ArtistSummary{},
		Albums:  []types.AlbumSummary{},
		Tracks:  []types.TrackSummary{},
	}

	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minSearchQueryLength {
		return results, nil
	}

	// The shared gate serializes outbound dispatch, so the three searches
	// run in sequence with the configured spacing.
	artists, err := s.remote.SearchArtists(ctx, query)
	if err != nil {
		return nil, err
	}
	albums, err := s.remote.SearchAlbums(ctx, query)
	if err != nil {
		return nil, err
	}
	tracks, err := s.remote.SearchTracks(ctx, query)
	if err != nil {
		return nil, err
	}

	mbids := make([]string, 0, len(albums))
	for _, album := range albums {
		mbids = append(mbids, album.MBID)
	}

	local, err := s.albumRepo.GetByMBIDs(ctx, mbids)
	if err != nil {
		return nil, err
	}

	for i := range albums {
		if saved, ok := local[albums[i].MBID]; ok {
			localID := saved.ID.String()
			albums[i].LocalID = &localID
			albums[i].CoverURL = saved.CoverURL
			avgRating := saved.AvgRating
			albums[i].AvgRating = &avgRating
			ratingCount := saved.RatingCount
			albums[i].RatingCount = &ratingCount
			continue
		}
		// Best effort only; a cover-art failure never fails the search.
		albums[i].CoverURL = s.remote.GetCoverArt(ctx, albums[i].MBID)
	}

	log.Debug("search completed",
		"query", query,
		"artists", len(artists),
		"albums", len(albums),
		"tracks", len(tracks),
	)

	results.Artists = artists
	results.Albums = albums
	results.Tracks = tracks
	return results, nil
}

// optional maps an empty string to an absent column value.
func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
