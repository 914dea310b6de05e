package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fyrsmithlabs/rmwiki/internal/character"
	"github.com/fyrsmithlabs/rmwiki/internal/logging"
	"github.com/fyrsmithlabs/rmwiki/internal/rickmorty"
	"github.com/fyrsmithlabs/rmwiki/internal/store"
	"github.com/fyrsmithlabs/rmwiki/internal/telemetry"
	"github.com/fyrsmithlabs/rmwiki/internal/wiki"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

const upstreamList = `{
	"info": {"count": 3, "pages": 2, "next": "https://rickandmortyapi.com/api/character/?page=2", "prev": null},
	"results": [
		{"id": 1, "name": "Rick Sanchez", "status": "Alive", "species": "Human", "gender": "Male",
		 "origin": {"name": "Earth (C-137)"}, "location": {"name": "Citadel of Ricks"}, "image": "https://img/1.jpeg"},
		{"id": 8, "name": "Adjudicator Rick", "status": "Dead", "species": "Human", "gender": "Male",
		 "origin": {"name": "unknown"}, "location": {"name": "Citadel of Ricks"}, "image": "https://img/8.jpeg"}
	]
}`

const upstreamRick = `{"id": 1, "name": "Rick Sanchez", "status": "Alive", "species": "Human", "gender": "Male",
	"origin": {"name": "Earth (C-137)"}, "location": {"name": "Citadel of Ricks"}, "image": "https://img/1.jpeg"}`

func fakeUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /character", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(upstreamList))
	})
	mux.HandleFunc("GET /character/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "1":
			_, _ = w.Write([]byte(upstreamRick))
		case "2":
			_, _ = w.Write([]byte(`{"id": 2, "name": "Morty Smith", "status": "Alive", "species": "Human"}`))
		default:
			http.Error(w, `{"error":"Character not found"}`, http.StatusNotFound)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type fixture struct {
	server *Server
	stores *store.Stores
	logs   *logging.TestLogger
}

func newFixture(t *testing.T, upstream *httptest.Server, opts ...Option) fixture {
	t.Helper()
	client, err := rickmorty.New(rickmorty.Config{BaseURL: upstream.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)

	stores := store.NewStores()
	loader := wiki.New(client, stores.Characters, stores.UI)
	logs := logging.NewTestLogger()

	srv, err := NewServer(loader, stores, logs.Logger, nil, opts...)
	require.NoError(t, err)
	return fixture{server: srv, stores: stores, logs: logs}
}

func (f fixture) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	f.server.echo.ServeHTTP(rec, req)
	return rec
}

func TestNewServer(t *testing.T) {
	stores := store.NewStores()
	loader := wiki.New(&rickmorty.Client{}, stores.Characters, stores.UI)

	t.Run("uses defaults when config is nil", func(t *testing.T) {
		srv, err := NewServer(loader, stores, logging.NewNop(), nil)
		require.NoError(t, err)
		assert.Equal(t, "localhost:9090", srv.Addr())
		assert.NotNil(t, srv.Echo())
	})

	t.Run("returns error when loader is nil", func(t *testing.T) {
		_, err := NewServer(nil, stores, logging.NewNop(), nil)
		assert.ErrorContains(t, err, "loader cannot be nil")
	})

	t.Run("returns error when stores is nil", func(t *testing.T) {
		_, err := NewServer(loader, nil, logging.NewNop(), nil)
		assert.ErrorContains(t, err, "stores cannot be nil")
	})

	t.Run("returns error when logger is nil", func(t *testing.T) {
		_, err := NewServer(loader, stores, nil, nil)
		assert.ErrorContains(t, err, "logger is required")
	})
}

func TestHealth(t *testing.T) {
	f := newFixture(t, fakeUpstream(t),
		WithBuildInfo("rmwiki", "1.0.0"),
		WithTelemetryHealth(func() telemetry.HealthStatus { return telemetry.HealthStatus{Healthy: true} }),
	)

	rec := f.do(http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "rmwiki", resp.Service)
	assert.Equal(t, "1.0.0", resp.Version)
	require.NotNil(t, resp.Telemetry)
	assert.True(t, resp.Telemetry.Healthy)
}

func TestRootRedirects(t *testing.T) {
	f := newFixture(t, fakeUpstream(t))

	rec := f.do(http.MethodGet, "/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/characters", rec.Header().Get(echo.HeaderLocation))
}

func TestCharactersPage(t *testing.T) {
	f := newFixture(t, fakeUpstream(t))

	rec := f.do(http.MethodGet, "/characters")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "rick and morty - wiki")
	assert.Contains(t, body, `href="/favourites"`)
	assert.Contains(t, body, `href="/creativity-zone"`)
	assert.Contains(t, body, "Rick Sanchez")
	assert.Contains(t, body, "Adjudicator Rick")
	assert.Contains(t, body, "status--alive")
	assert.Contains(t, body, "status--dead")
	assert.Contains(t, body, `href="/characters?page=2"`)
	assert.NotContains(t, body, "banner--error")

	assert.Len(t, f.stores.Characters.State().Characters, 2)
	assert.False(t, f.stores.UI.State().IsLoading())
}

func TestCharactersPage_BadPage(t *testing.T) {
	f := newFixture(t, fakeUpstream(t))

	for _, q := range []string{"abc", "0", "-2"} {
		rec := f.do(http.MethodGet, "/characters?page="+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestCharactersPage_UpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(upstream.Close)
	f := newFixture(t, upstream)

	rec := f.do(http.MethodGet, "/characters")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "banner--error")
	assert.Contains(t, body, "status 500")
	assert.Empty(t, f.stores.Characters.State().Characters)
	assert.False(t, f.stores.UI.State().IsLoading())
}

func TestCharacterPage(t *testing.T) {
	f := newFixture(t, fakeUpstream(t))

	rec := f.do(http.MethodGet, "/characters/1")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<title>Rick Sanchez | rick and morty - wiki</title>")
	assert.Contains(t, body, "Earth (C-137)")
	assert.Contains(t, body, "Citadel of Ricks")
	assert.Contains(t, body, `action="/favourites/1"`)
}

func TestCharacterPage_NotFound(t *testing.T) {
	f := newFixture(t, fakeUpstream(t))

	rec := f.do(http.MethodGet, "/characters/999")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No character with that id exists.")
}

func TestCharacterPage_NonNumericID(t *testing.T) {
	f := newFixture(t, fakeUpstream(t))

	rec := f.do(http.MethodGet, "/characters/rick")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFavouritesFlow(t *testing.T) {
	f := newFixture(t, fakeUpstream(t))

	rec := f.do(http.MethodPost, "/favourites/2")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/favourites", rec.Header().Get(echo.HeaderLocation))
	f.do(http.MethodPost, "/favourites/1")
	assert.Equal(t, []int{2, 1}, f.stores.Favourites.State().IDs)

	rec = f.do(http.MethodGet, "/favourites")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Morty Smith")
	assert.Contains(t, body, "Rick Sanchez")
	assert.Less(t, strings.Index(body, "Morty Smith"), strings.Index(body, "Rick Sanchez"), "favourite order kept")
	assert.Contains(t, body, `action="/favourites/2/delete"`)

	f.do(http.MethodPost, "/favourites/2/delete")
	assert.Equal(t, []int{1}, f.stores.Favourites.State().IDs)
}

func TestFavouritesPage_PartialFailure(t *testing.T) {
	f := newFixture(t, fakeUpstream(t))
	f.stores.Favourites.Dispatch(store.AddFavourite(1))
	f.stores.Favourites.Dispatch(store.AddFavourite(404))

	rec := f.do(http.MethodGet, "/favourites")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Rick Sanchez")
	assert.Contains(t, body, "banner--error")
}

func TestCreativityZone(t *testing.T) {
	f := newFixture(t, fakeUpstream(t))

	rec := f.do(http.MethodGet, "/creativity-zone")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "creativity zone")
	assert.Contains(t, rec.Body.String(), "navbar__anchor--active")
}

func TestAPICharacters(t *testing.T) {
	f := newFixture(t, fakeUpstream(t))

	rec := f.do(http.MethodGet, "/api/v1/characters")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CharactersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, wiki.KindOK, resp.Result.Kind)
	require.Len(t, resp.Characters, 2)
	assert.Equal(t, "Rick Sanchez", resp.Characters[0].Name)
	assert.Equal(t, 2, resp.Info.Pages)
	assert.False(t, resp.UI.Loading)
}

func TestAPICharacter(t *testing.T) {
	f := newFixture(t, fakeUpstream(t))

	rec := f.do(http.MethodGet, "/api/v1/characters/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"result": {"kind": "ok"},
		"character": {
			"id": 1, "name": "Rick Sanchez", "status": "Alive", "species": "Human", "gender": "Male",
			"origin": {"name": "Earth (C-137)"}, "location": {"name": "Citadel of Ricks"},
			"image": "https://img/1.jpeg"
		}
	}`, rec.Body.String())
}

func TestAPICharacter_Failures(t *testing.T) {
	f := newFixture(t, fakeUpstream(t))

	tests := []struct {
		target string
		code   int
		kind   string
	}{
		{"/api/v1/characters/999", http.StatusNotFound, "status"},
		{"/api/v1/characters/0", http.StatusBadRequest, "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := f.do(http.MethodGet, tt.target)
			assert.Equal(t, tt.code, rec.Code)

			var resp struct {
				Result struct {
					Kind string `json:"kind"`
				} `json:"result"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.kind, resp.Result.Kind)
		})
	}
}

func TestAPIUI(t *testing.T) {
	f := newFixture(t, fakeUpstream(t))
	f.stores.UI.Dispatch(store.SetLoading(true))

	rec := f.do(http.MethodGet, "/api/v1/ui")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"loading": true, "in_flight": 1}`, rec.Body.String())
}

func TestAPIFavourites(t *testing.T) {
	f := newFixture(t, fakeUpstream(t))

	rec := f.do(http.MethodPut, "/api/v1/favourites/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ids": [1]}`, rec.Body.String())

	rec = f.do(http.MethodPut, "/api/v1/favourites/-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/favourites")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp FavouritesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []int{1}, resp.IDs)
	require.Len(t, resp.Characters, 1)
	assert.Equal(t, "Rick Sanchez", resp.Characters[0].Name)

	rec = f.do(http.MethodDelete, "/api/v1/favourites/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ids": []}`, rec.Body.String())
}

// interleave dispatches list into the shared characters store the first
// time a published state satisfies trigger, the way an overlapping request
// would.
func interleave(stores *store.Stores, trigger func(store.CharactersState) bool, list []character.Character) {
	var fired atomic.Bool
	stores.Characters.Subscribe(func(state store.CharactersState) {
		if trigger(state) && fired.CompareAndSwap(false, true) {
			stores.Characters.Dispatch(store.LoadCharacters(list))
		}
	})
}

func hasCharacter(id int) func(store.CharactersState) bool {
	return func(state store.CharactersState) bool {
		_, ok := state.Find(id)
		return ok
	}
}

var intruders = []character.Character{{ID: 21, Name: "Aqua Morty", Status: character.StatusUnknown}}

func TestInterleavedLoads(t *testing.T) {
	t.Run("api character", func(t *testing.T) {
		f := newFixture(t, fakeUpstream(t))
		interleave(f.stores, hasCharacter(1), intruders)

		rec := f.do(http.MethodGet, "/api/v1/characters/1")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp CharacterResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.Character)
		assert.Equal(t, "Rick Sanchez", resp.Character.Name)

		_, ok := f.stores.Characters.State().Find(1)
		assert.False(t, ok, "shared store now holds the other load")
	})

	t.Run("character page", func(t *testing.T) {
		f := newFixture(t, fakeUpstream(t))
		interleave(f.stores, hasCharacter(1), intruders)

		rec := f.do(http.MethodGet, "/characters/1")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "<title>Rick Sanchez | rick and morty - wiki</title>")
		assert.NotContains(t, body, "Aqua Morty")
	})

	t.Run("characters page", func(t *testing.T) {
		f := newFixture(t, fakeUpstream(t))
		interleave(f.stores, hasCharacter(8), intruders)

		rec := f.do(http.MethodGet, "/characters?page=2")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Adjudicator Rick")
		assert.Contains(t, body, `href="/characters?page=3"`)
		assert.NotContains(t, body, "Aqua Morty")
	})

	t.Run("api characters", func(t *testing.T) {
		f := newFixture(t, fakeUpstream(t))
		interleave(f.stores, hasCharacter(8), intruders)

		rec := f.do(http.MethodGet, "/api/v1/characters?page=2")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp CharactersResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Characters, 2)
		assert.Equal(t, "Adjudicator Rick", resp.Characters[1].Name)
		assert.Equal(t, 2, resp.Info.Page)
	})

	t.Run("favourites", func(t *testing.T) {
		f := newFixture(t, fakeUpstream(t))
		f.stores.Favourites.Dispatch(store.AddFavourite(2))
		interleave(f.stores, hasCharacter(2), intruders)

		rec := f.do(http.MethodGet, "/api/v1/favourites")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp FavouritesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Characters, 1)
		assert.Equal(t, "Morty Smith", resp.Characters[0].Name)
	})
}

func TestConcurrentRequests(t *testing.T) {
	f := newFixture(t, fakeUpstream(t))

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 3 {
			case 0, 1:
				id, want := 1, "Rick Sanchez"
				if i%3 == 1 {
					id, want = 2, "Morty Smith"
				}
				rec := f.do(http.MethodGet, "/api/v1/characters/"+strconv.Itoa(id))
				var resp CharacterResponse
				if assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)) && assert.NotNil(t, resp.Character) {
					assert.Equal(t, want, resp.Character.Name)
				}
			default:
				rec := f.do(http.MethodGet, "/api/v1/characters?page=2")
				var resp CharactersResponse
				if assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)) {
					assert.Len(t, resp.Characters, 2)
					assert.Equal(t, 2, resp.Info.Page)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.False(t, f.stores.UI.State().IsLoading())
}

func TestAPICharacters_FailureOmitsStaleData(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(upstream.Close)
	f := newFixture(t, upstream)
	f.stores.Characters.Dispatch(store.LoadCharacters(intruders))

	rec := f.do(http.MethodGet, "/api/v1/characters")
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp CharactersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, wiki.KindStatus, resp.Result.Kind)
	assert.Empty(t, resp.Characters)
	assert.Len(t, f.stores.Characters.State().Characters, 1, "failed load leaves the store alone")
}

func TestServer_LogsLoadingTransitions(t *testing.T) {
	f := newFixture(t, fakeUpstream(t))

	f.do(http.MethodGet, "/api/v1/characters/1")

	f.logs.AssertLogged(t, zapcore.DebugLevel, "loading changed")
	f.logs.AssertField(t, "loading changed", "in_flight", int64(1))
	f.logs.AssertField(t, "loading changed", "in_flight", int64(0))
	f.logs.AssertField(t, "loading changed", "loading", false)

	require.NoError(t, f.server.Shutdown(context.Background()))
	f.logs.Reset()
	f.stores.UI.Dispatch(store.SetLoading(true))
	f.logs.AssertNotLogged(t, zapcore.DebugLevel, "loading changed")
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, fakeUpstream(t))

	rec := f.do(http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRequestIDAndLogging(t *testing.T) {
	f := newFixture(t, fakeUpstream(t))

	rec := f.do(http.MethodGet, "/health")
	id := rec.Header().Get(echo.HeaderXRequestID)
	_, err := uuid.Parse(id)
	require.NoError(t, err, "request id is a uuid")

	f.logs.AssertLogged(t, zapcore.InfoLevel, "http request")
	f.logs.AssertField(t, "http request", "request.id", id)
	f.logs.AssertField(t, "http request", "http.route", "/health")
	f.logs.AssertField(t, "http request", "status", int64(200))
}

func TestRequestIDPropagated(t *testing.T) {
	f := newFixture(t, fakeUpstream(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc-123")
	rec := httptest.NewRecorder()
	f.server.echo.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(echo.HeaderXRequestID))
	f.logs.AssertField(t, "http request", "request.id", "abc-123")
}

func TestErrorStatusIsLogged(t *testing.T) {
	f := newFixture(t, fakeUpstream(t))

	f.do(http.MethodGet, "/characters/rick")
	f.logs.AssertField(t, "http request", "status", int64(http.StatusBadRequest))
}

func TestTracingAndMetrics(t *testing.T) {
	tt := telemetry.NewTestTelemetry()
	f := newFixture(t, fakeUpstream(t),
		WithTracer(tt.Tracer("test")),
		WithHTTPMetrics(NewHTTPMetrics(tt.Meter("test"), nil)),
	)

	rec := f.do(http.MethodGet, "/characters/1")
	require.Equal(t, http.StatusOK, rec.Code)

	tt.AssertSpanExists(t, "GET /characters/:id")
	tt.AssertSpanAttribute(t, "GET /characters/:id", "http.route", "/characters/:id")
	tt.AssertSpanAttribute(t, "GET /characters/:id", "http.response.status_code", int64(200))

	names := tt.MetricNames(context.Background())
	assert.Contains(t, names, "rmwiki.http.requests_total")
	assert.Contains(t, names, "rmwiki.http.request_duration_seconds")
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "unmatched", normalizePath(""))
	assert.Equal(t, "/characters/:id", normalizePath("/characters/:id"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusOK, statusFor(wiki.Result{Kind: wiki.KindOK}))
	assert.Equal(t, http.StatusBadRequest, statusFor(wiki.Result{Kind: wiki.KindInvalid}))
	assert.Equal(t, http.StatusNotFound, statusFor(wiki.Result{Kind: wiki.KindStatus, Status: 404}))
	assert.Equal(t, http.StatusBadGateway, statusFor(wiki.Result{Kind: wiki.KindStatus, Status: 500}))
	assert.Equal(t, http.StatusBadGateway, statusFor(wiki.Result{Kind: wiki.KindTransport}))
	assert.Equal(t, http.StatusBadGateway, statusFor(wiki.Result{Kind: wiki.KindDecode}))
}

func TestStartAndShutdown(t *testing.T) {
	stores := store.NewStores()
	loader := wiki.New(&rickmorty.Client{}, stores.Characters, stores.UI)
	srv, err := NewServer(loader, stores, logging.NewNop(), &Config{
		Host:            "127.0.0.1",
		Port:            0,
		ShutdownTimeout: time.Second,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.True(t, errors.Is(err, http.ErrServerClosed), "got %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}
