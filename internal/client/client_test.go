package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"syncalendar/internal/auth"
	"syncalendar/internal/calendar"
	"syncalendar/internal/handlers"
	"syncalendar/internal/logger"
	"syncalendar/internal/notify"
	"syncalendar/internal/storage"
	"syncalendar/internal/usecases"
)

type mockClient struct {
	DoFunc func(req *http.Request) (*http.Response, error)
}

func (mc *mockClient) Do(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("error request is nil")
	}
	return mc.DoFunc(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := logger.Discard()
	store := storage.NewMemory()
	router := handlers.NewRouter(handlers.Deps{
		Store:     store,
		Auth:      auth.NewService(store, store, auth.NewTokenIssuer("test-secret", time.Hour), log),
		Google:    auth.NewGoogleProvider(nil, ""),
		Scheduler: notify.NewScheduler(store, store, notify.NewLogSender(log), 15, time.UTC, log),
		Location:  time.UTC,
		Now:       func() time.Time { return time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC) },
		Log:       log,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientAgainstServer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	srv := newServer(t)
	c := New(srv.URL, srv.Client(), &MemoryStore{}, logger.Discard())

	if _, err := c.Me(ctx); !errors.Is(err, ErrNoToken) {
		t.Fatalf("Me before login: %v", err)
	}

	user, err := c.Register(ctx, auth.Registration{Name: "Ann", Email: "ann@example.com", Password: "Secret123"})
	if err != nil {
		t.Fatal(err)
	}

	me, err := c.Me(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(user, me); diff != "" {
		t.Errorf("Me() mismatch (-register +me):\n%s", diff)
	}

	created, err := c.CreateEvent(ctx, usecases.EventPayload{
		Title:         "Planning",
		StartDatetime: "2024-06-12T10:00:00Z",
		Color:         "#ef4444",
	})
	if err != nil {
		t.Fatal(err)
	}

	june := &calendar.Month{Year: 2024, Index: 5}
	raw, err := c.RawEvents(ctx, june)
	if err != nil {
		t.Fatal(err)
	}
	want := []usecases.RawOccurrence{{
		ID:            created.ID,
		Title:         "Planning",
		StartDatetime: "2024-06-12T10:00:00Z",
		Color:         "#ef4444",
	}}
	if diff := cmp.Diff(want, raw); diff != "" {
		t.Errorf("RawEvents() mismatch (-want +got):\n%s", diff)
	}

	view, err := c.Month(ctx, *june)
	if err != nil {
		t.Fatal(err)
	}
	if view.Selected != 10 || len(view.Cells)%7 != 0 {
		t.Errorf("month view selected %d with %d cells", view.Selected, len(view.Cells))
	}

	if err := c.DeleteEvent(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteEvent(ctx, created.ID); !IsStatus(err, http.StatusNotFound) {
		t.Errorf("second delete: %v", err)
	}

	if err := c.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Events(ctx, nil); !errors.Is(err, ErrNoToken) {
		t.Errorf("Events after logout: %v", err)
	}

	if _, err := c.Login(ctx, "ann@example.com", "wrong-Pass1"); !IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("bad login: %v", err)
	}
}

func TestClientErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doFunc  func(req *http.Request) (*http.Response, error)
		status  int
		message string
	}{
		{
			name: "json error body",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusConflict, `{"error":"email already registered"}`), nil
			},
			status:  http.StatusConflict,
			message: "email already registered",
		},
		{
			name: "plain error body",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusBadGateway, "upstream down"), nil
			},
			status:  http.StatusBadGateway,
			message: "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New("http://api.test", &mockClient{DoFunc: tt.doFunc}, nil, logger.Discard())

			_, err := c.Register(context.Background(), auth.Registration{})
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Status != tt.status || apiErr.Message != tt.message {
				t.Errorf("got %d %q", apiErr.Status, apiErr.Message)
			}
		})
	}

	t.Run("transport error", func(t *testing.T) {
		c := New("http://api.test", &mockClient{DoFunc: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		}}, nil, logger.Discard())

		if _, err := c.Login(context.Background(), "a@b.c", "x"); err == nil || !strings.Contains(err.Error(), "connection refused") {
			t.Errorf("err = %v", err)
		}
	})
}

func TestClientSendsBearerToken(t *testing.T) {
	t.Parallel()

	store := &MemoryStore{}
	if err := store.Save("abc"); err != nil {
		t.Fatal(err)
	}

	var gotAuth, gotPath string
	c := New("http://api.test/", &mockClient{DoFunc: func(req *http.Request) (*http.Response, error) {
		gotAuth = req.Header.Get("Authorization")
		gotPath = req.URL.RequestURI()
		return jsonResponse(http.StatusOK, `{"events":[]}`), nil
	}}, store, logger.Discard())

	if _, err := c.Events(context.Background(), &calendar.Month{Year: 2024, Index: 0}); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer abc" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPath != "/events?month=0&year=2024" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "token")
	fs := NewFileStore(path)

	if _, err := fs.Load(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("Load on missing file: %v", err)
	}
	if err := fs.Save("secret-token"); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != tokenFilePermMode {
		t.Errorf("perm = %o", perm)
	}

	token, err := fs.Load()
	if err != nil || token != "secret-token" {
		t.Errorf("Load() = %q, %v", token, err)
	}

	if err := fs.Delete(); err != nil {
		t.Fatal(err)
	}
	if err := fs.Delete(); err != nil {
		t.Errorf("second Delete: %v", err)
	}
	if _, err := fs.Load(); !errors.Is(err, ErrNoToken) {
		t.Errorf("Load after Delete: %v", err)
	}
}
