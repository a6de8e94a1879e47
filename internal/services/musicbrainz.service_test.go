package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"soundsocial/config"
	"soundsocial/internal/apperrors"
	"soundsocial/internal/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingServer records how many requests each path prefix received so
// tests can assert that cache hits skip the network entirely.
type countingServer struct {
	mu     sync.Mutex
	counts map[string]int
}

func (cs *countingServer) record(path string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.counts[path]++
}

func (cs *countingServer) count(path string) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.counts[path]
}

func newTestMusicBrainzService(t *testing.T, handler http.Handler) (*MusicBrainzService, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Config{
		MusicBrainzURL:       srv.URL,
		CoverArtURL:          srv.URL,
		MusicBrainzUserAgent: "SoundSocialTest/0.0.1 (test@soundsocial.app)",
	}

	service := NewMusicBrainzService(
		cfg,
		NewRateGateService(time.Millisecond),
		cache.New[string, any](time.Minute, 64),
	)
	return service, srv
}

func TestSearchArtists_MapsAndCaches(t *testing.T) {
	counter := &countingServer{counts: make(map[string]int)}
	mux := http.NewServeMux()
	mux.HandleFunc("/artist", func(w http.ResponseWriter, r *http.Request) {
		counter.record("/artist")
		assert.Equal(t, "radiohead", r.URL.Query().Get("query"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"artists": [
				{"id": "a74b1b7f-71a5-4011-9441-d0b5e4122711", "name": "Radiohead", "country": "GB",
					"tags": [{"name": "rock"}, {"name": "alternative"}]}
			]
		}`))
	})

	service, _ := newTestMusicBrainzService(t, mux)

	artists, err := service.SearchArtists(context.Background(), "radiohead")
	require.NoError(t, err)
	require.Len(t, artists, 1)
	assert.Equal(t, "a74b1b7f-71a5-4011-9441-d0b5e4122711", artists[0].MBID)
	assert.Equal(t, "Radiohead", artists[0].Name)
	assert.Equal(t, "GB", artists[0].Country)
	assert.Equal(t, []string{"rock", "alternative"}, artists[0].Genres)

	// Second identical query is served from cache.
	again, err := service.SearchArtists(context.Background(), "radiohead")
	require.NoError(t, err)
	assert.Equal(t, artists, again)
	assert.Equal(t, 1, counter.count("/artist"))
}

func TestSearchAlbums_MapsArtistCredit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/release-group", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "album", r.URL.Query().Get("type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"release-groups": [
				{"id": "rg-1", "title": "OK Computer", "primary-type": "Album",
					"first-release-date": "1997-05-21",
					"artist-credit": [{"artist": {"id": "a-1", "name": "Radiohead"}}]}
			]
		}`))
	})

	service, _ := newTestMusicBrainzService(t, mux)

	albums, err := service.SearchAlbums(context.Background(), "ok computer")
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.Equal(t, "rg-1", albums[0].MBID)
	assert.Equal(t, "Radiohead", albums[0].Artist)
	assert.Equal(t, "a-1", albums[0].ArtistMBID)
	assert.Equal(t, "1997-05-21", albums[0].ReleaseDate)
	assert.Equal(t, "Album", albums[0].AlbumType)
}

func TestGetFullAlbum_CompositeFetch(t *testing.T) {
	counter := &countingServer{counts: make(map[string]int)}
	mux := http.NewServeMux()
	mux.HandleFunc("/release-group/rg-1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		// The cover-art archive shares the /release-group/{mbid} path shape
		// with the metadata service; only the metadata call carries fmt=json.
		if r.URL.Query().Get("fmt") != "json" {
			counter.record("/coverart/rg-1")
			_, _ = w.Write([]byte(`{
				"images": [{"image": "http://img/full.jpg", "thumbnails": {"large": "http://img/large.jpg"}}]
			}`))
			return
		}

		counter.record("/release-group/rg-1")
		assert.Equal(t, "artists+releases", r.URL.Query().Get("inc"))
		_, _ = w.Write([]byte(`{
			"id": "rg-1", "title": "In Rainbows", "primary-type": "Album",
			"first-release-date": "2007-10-10",
			"artist-credit": [{"artist": {"id": "a-1", "name": "Radiohead"}}],
			"releases": [{"id": "rel-1", "title": "In Rainbows"}]
		}`))
	})
	mux.HandleFunc("/release/rel-1", func(w http.ResponseWriter, r *http.Request) {
		counter.record("/release/rel-1")
		assert.Equal(t, "recordings", r.URL.Query().Get("inc"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "rel-1",
			"media": [{"tracks": [
				{"number": "1", "title": "15 Step", "length": 237000,
					"recording": {"id": "rec-1", "title": "15 Step"}},
				{"number": "A2", "title": "",
					"recording": {"id": "rec-2", "title": "Bodysnatchers", "length": 242000}}
			]}]
		}`))
	})

	service, _ := newTestMusicBrainzService(t, mux)

	detail, err := service.GetFullAlbum(context.Background(), "rg-1")
	require.NoError(t, err)
	assert.Equal(t, "In Rainbows", detail.Title)
	assert.Equal(t, "Radiohead", detail.Artist)
	assert.Equal(t, "a-1", detail.ArtistMBID)

	require.Len(t, detail.Tracks, 2)
	require.NotNil(t, detail.Tracks[0].TrackNumber)
	assert.Equal(t, 1, *detail.Tracks[0].TrackNumber)
	require.NotNil(t, detail.Tracks[0].DurationMs)
	assert.Equal(t, 237000, *detail.Tracks[0].DurationMs)

	// Vinyl-style positions do not parse as integers; the title and
	// duration fall back to the recording.
	assert.Nil(t, detail.Tracks[1].TrackNumber)
	assert.Equal(t, "Bodysnatchers", detail.Tracks[1].Title)
	require.NotNil(t, detail.Tracks[1].DurationMs)
	assert.Equal(t, 242000, *detail.Tracks[1].DurationMs)

	require.NotNil(t, detail.CoverURL)
	assert.Equal(t, "http://img/large.jpg", *detail.CoverURL)

	// Whole composite is cached under one key.
	_, err = service.GetFullAlbum(context.Background(), "rg-1")
	require.NoError(t, err)
	assert.Equal(t, 1, counter.count("/release-group/rg-1"))
	assert.Equal(t, 1, counter.count("/release/rel-1"))
}

func TestGetArtist_FiltersDiscographyAndLimitsTags(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/artist/a-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "release-groups+tags", r.URL.Query().Get("inc"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "a-1", "name": "Radiohead", "country": "GB",
			"life-span": {"begin": "1985-01-01"},
			"tags": [{"name": "t1"}, {"name": "t2"}, {"name": "t3"}, {"name": "t4"}, {"name": "t5"}, {"name": "t6"}],
			"release-groups": [
				{"id": "rg-1", "title": "OK Computer", "primary-type": "Album", "first-release-date": "1997-05-21"},
				{"id": "rg-2", "title": "Live EP", "primary-type": "EP"}
			]
		}`))
	})

	service, _ := newTestMusicBrainzService(t, mux)

	detail, err := service.GetArtist(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Equal(t, "Radiohead", detail.Name)
	assert.Equal(t, "1985", detail.FormedYear)
	assert.Len(t, detail.Genres, 5)

	require.Len(t, detail.ReleaseGroups, 1)
	assert.Equal(t, "rg-1", detail.ReleaseGroups[0].MBID)
}

func TestGet_ErrorMapping(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/artist/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/artist/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	service, _ := newTestMusicBrainzService(t, mux)

	_, err := service.GetArtist(context.Background(), "missing")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	_, err = service.GetArtist(context.Background(), "broken")
	assert.True(t, apperrors.IsKind(err, apperrors.KindRemoteUnavailable))
}

func TestGetCoverArt_NoArtIsCachedNegative(t *testing.T) {
	counter := &countingServer{counts: make(map[string]int)}
	mux := http.NewServeMux()
	mux.HandleFunc("/release-group/bare", func(w http.ResponseWriter, r *http.Request) {
		counter.record("/release-group/bare")
		w.WriteHeader(http.StatusNotFound)
	})

	service, _ := newTestMusicBrainzService(t, mux)

	assert.Nil(t, service.GetCoverArt(context.Background(), "bare"))
	assert.Nil(t, service.GetCoverArt(context.Background(), "bare"))

	// The confirmed miss is cached; only the first call hits the network.
	assert.Equal(t, 1, counter.count("/release-group/bare"))
}

func TestGetCoverArt_TransientFailureIsNotCached(t *testing.T) {
	counter := &countingServer{counts: make(map[string]int)}
	mux := http.NewServeMux()
	mux.HandleFunc("/release-group/flaky", func(w http.ResponseWriter, r *http.Request) {
		counter.record("/release-group/flaky")
		if counter.count("/release-group/flaky") == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"images": [{"image": "http://img/full.jpg", "thumbnails": {}}]}`))
	})

	service, _ := newTestMusicBrainzService(t, mux)

	assert.Nil(t, service.GetCoverArt(context.Background(), "flaky"))

	cover := service.GetCoverArt(context.Background(), "flaky")
	require.NotNil(t, cover)
	assert.Equal(t, "http://img/full.jpg", *cover)
	assert.Equal(t, 2, counter.count("/release-group/flaky"))
}

func TestParseTrackNumber(t *testing.T) {
	n := parseTrackNumber("7")
	require.NotNil(t, n)
	assert.Equal(t, 7, *n)

	assert.Nil(t, parseTrackNumber("A1"))
	assert.Nil(t, parseTrackNumber(""))
}
