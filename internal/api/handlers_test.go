package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skincraft-api/internal/capes"
	"skincraft-api/internal/config"
	"skincraft-api/internal/gallery"
	"skincraft-api/internal/laby"
	"skincraft-api/internal/names"
	"skincraft-api/internal/profile"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeProfiles struct {
	resp      *profile.Response
	capesList []profile.Cape
	skinsList []profile.Skin
	err       error
	calls     int
}

func (f *fakeProfiles) Profile(ctx context.Context, identifier string) (*profile.Response, error) {
	f.calls++
	return f.resp, f.err
}

func (f *fakeProfiles) Capes(ctx context.Context, identifier string) ([]profile.Cape, error) {
	return f.capesList, f.err
}

func (f *fakeProfiles) Skins(ctx context.Context, identifier string) ([]profile.Skin, error) {
	return f.skinsList, f.err
}

type fakePredictor struct {
	result names.Result
	err    error
	calls  int
}

func (f *fakePredictor) Predict(ctx context.Context, username string) (names.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakeNames struct {
	list []laby.UpcomingName
	err  error
	last laby.NamesQuery
}

func (f *fakeNames) UpcomingNames(ctx context.Context, q laby.NamesQuery) ([]laby.UpcomingName, error) {
	f.last = q
	return f.list, f.err
}

type fakeGallery struct {
	entries    []gallery.Entry
	lastPeriod string
}

func (f *fakeGallery) Latest(ctx context.Context) []gallery.Entry { return f.entries }
func (f *fakeGallery) Random(ctx context.Context) []gallery.Entry { return f.entries }
func (f *fakeGallery) Trending(ctx context.Context, period string) []gallery.Entry {
	f.lastPeriod = period
	return f.entries
}

type fakeCache struct {
	store map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string]string{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, bool) {
	v, ok := f.store[key]
	return v, ok
}

func (f *fakeCache) Set(ctx context.Context, key, value string) {
	f.store[key] = value
}

type serverDeps struct {
	profiles  *fakeProfiles
	predictor *fakePredictor
	names     *fakeNames
	gallery   *fakeGallery
}

func newTestServer(t *testing.T) (*Server, *serverDeps) {
	t.Helper()
	return newTestServerWithCache(t, nil)
}

func newTestServerWithCache(t *testing.T, rc ResponseCache) (*Server, *serverDeps) {
	t.Helper()

	deps := &serverDeps{
		profiles:  &fakeProfiles{},
		predictor: &fakePredictor{},
		names:     &fakeNames{},
		gallery:   &fakeGallery{},
	}

	cfg := config.Config{
		ScrapeTimeout:  time.Second,
		CORSOrigins:    []string{"*"},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}

	srv := NewServer(slog.Default(), cfg, rc, capes.NewCatalog(), deps.profiles, deps.predictor, deps.names, deps.gallery)
	return srv, deps
}

func do(srv *Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestCheckName_InvalidFormats(t *testing.T) {
	srv, deps := newTestServer(t)

	for _, username := range []string{"ab", "seventeen_chars_x", "bad-name", "sp%20ace"} {
		w := do(srv, http.MethodGet, "/api/name/"+username)
		assert.Equal(t, http.StatusBadRequest, w.Code, username)
	}
	assert.Zero(t, deps.predictor.calls, "predictor must not be called for invalid input")
}

func TestCheckName_OK(t *testing.T) {
	srv, deps := newTestServer(t)
	availableFrom := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	deps.predictor.result = names.Result{Name: "Taken_Name", Available: false, AvailableFrom: &availableFrom}

	w := do(srv, http.MethodGet, "/api/name/Taken_Name")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Name          string  `json:"name"`
		Available     bool    `json:"available"`
		AvailableFrom *string `json:"available_from"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Taken_Name", body.Name)
	assert.False(t, body.Available)
	require.NotNil(t, body.AvailableFrom)
	assert.Equal(t, "2026-09-01T10:00:00Z", *body.AvailableFrom)
}

func TestNamesByLength_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, length := range []string{"2", "17", "abc", "-1"} {
		w := do(srv, http.MethodGet, "/api/names/"+length)
		assert.Equal(t, http.StatusBadRequest, w.Code, length)
	}
}

func TestNamesByLength_PassesFilterAndTruncates(t *testing.T) {
	srv, deps := newTestServer(t)
	for i := 0; i < 15; i++ {
		deps.names.list = append(deps.names.list, laby.UpcomingName{Name: "name"})
	}

	w := do(srv, http.MethodGet, "/api/names/4")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, laby.NamesQuery{MinLength: 4, MaxLength: 4}, deps.names.last)

	var body struct {
		Length int               `json:"length"`
		Names  []json.RawMessage `json:"names"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 4, body.Length)
	assert.Len(t, body.Names, 10)
}

func TestUpcomingNames_UpstreamFailure(t *testing.T) {
	srv, deps := newTestServer(t)
	deps.names.err = assert.AnError

	w := do(srv, http.MethodGet, "/api/names")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestProfile_NotFound(t *testing.T) {
	srv, deps := newTestServer(t)
	deps.profiles.err = laby.ErrNotFound

	w := do(srv, http.MethodGet, "/api/user/ghost/profile")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfile_OK(t *testing.T) {
	srv, deps := newTestServer(t)
	deps.profiles.resp = &profile.Response{UUID: "u1", Name: "Notch"}

	w := do(srv, http.MethodGet, "/api/user/Notch/profile")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uuid":"u1"`)
}

func TestProfile_CacheHitReplays(t *testing.T) {
	rc := newFakeCache()
	rc.store["profile:Notch"] = `{"uuid":"cached"}`
	srv, deps := newTestServerWithCache(t, rc)

	w := do(srv, http.MethodGet, "/api/user/Notch/profile")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"uuid":"cached"}`, w.Body.String())
	assert.Zero(t, deps.profiles.calls, "a hit must not reach upstream")
}

func TestProfile_CacheMissStoresResponse(t *testing.T) {
	rc := newFakeCache()
	srv, deps := newTestServerWithCache(t, rc)
	deps.profiles.resp = &profile.Response{UUID: "u1", Name: "Notch"}

	w := do(srv, http.MethodGet, "/api/user/Notch/profile")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Cache"))

	stored, ok := rc.store["profile:Notch"]
	require.True(t, ok, "miss must store the marshaled response")
	assert.JSONEq(t, w.Body.String(), stored)
}

func TestUserCapes_CacheMissStoresWrappedBody(t *testing.T) {
	rc := newFakeCache()
	srv, deps := newTestServerWithCache(t, rc)
	deps.profiles.capesList = []profile.Cape{{Name: "Migrator", Hash: "h1", Active: true}}

	w := do(srv, http.MethodGet, "/api/user/Notch/capes")
	require.Equal(t, http.StatusOK, w.Code)

	stored, ok := rc.store["capes:Notch"]
	require.True(t, ok)
	assert.Contains(t, stored, `"CAPES"`)
}

func TestUserCapes_WrappedInCapesKey(t *testing.T) {
	srv, deps := newTestServer(t)
	deps.profiles.capesList = []profile.Cape{{Name: "Migrator", Hash: "h1", Active: true}}

	w := do(srv, http.MethodGet, "/api/user/Notch/capes")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string][]profile.Cape
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Contains(t, body, "CAPES")
	assert.Equal(t, "Migrator", body["CAPES"][0].Name)
}

func TestUserSkins_WrappedInSkinsKey(t *testing.T) {
	srv, deps := newTestServer(t)
	deps.profiles.skinsList = []profile.Skin{{Hash: "s1"}}

	w := do(srv, http.MethodGet, "/api/user/Notch/skins")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"SKINS"`)
}

func TestCapesCatalog(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(srv, http.MethodGet, "/api/capes")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		TotalCapes int               `json:"totalCapes"`
		Capes      []json.RawMessage `json:"capes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, len(body.Capes), body.TotalCapes)
	// bundled image/link fields never reach the response
	assert.NotContains(t, w.Body.String(), `"image"`)
	assert.NotContains(t, w.Body.String(), `"link"`)
}

func TestGallery_EmptyIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, target := range []string{"/api/skins/latest", "/api/skins/random", "/api/skins/daily"} {
		w := do(srv, http.MethodGet, target)
		assert.Equal(t, http.StatusNotFound, w.Code, target)
	}
}

func TestGallery_TrendingPeriods(t *testing.T) {
	srv, deps := newTestServer(t)
	user := "Steve"
	deps.gallery.entries = []gallery.Entry{{User: &user, ID: "abc", Count: 3}}

	for _, period := range []string{"daily", "weekly", "monthly"} {
		w := do(srv, http.MethodGet, "/api/skins/"+period)
		require.Equal(t, http.StatusOK, w.Code, period)
		assert.Equal(t, period, deps.gallery.lastPeriod)
		assert.Contains(t, w.Body.String(), `"period":"`+period+`"`)
	}
}

func TestGallery_Latest(t *testing.T) {
	srv, deps := newTestServer(t)
	deps.gallery.entries = []gallery.Entry{{ID: "abc", Count: 7}}

	w := do(srv, http.MethodGet, "/api/skins/latest")
	require.Equal(t, http.StatusOK, w.Code)
	// user key present and null when unknown
	assert.Contains(t, w.Body.String(), `"user":null`)
}

func TestLegacyUnprefixedRoutes(t *testing.T) {
	srv, deps := newTestServer(t)
	deps.predictor.result = names.Result{Name: "SomeName", Available: true}

	w := do(srv, http.MethodGet, "/name/SomeName")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIndexListsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(srv, http.MethodGet, "/api")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/name/:username")
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(srv, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewServerKeepsGinMode(t *testing.T) {
	newTestServer(t)
	assert.Equal(t, gin.TestMode, gin.Mode())
}

func TestOversizedParamRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(srv, http.MethodGet, "/api/user/"+strings.Repeat("a", 150)+"/profile")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
