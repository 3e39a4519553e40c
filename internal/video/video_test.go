package video

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
)

type mockStorage struct {
	playbackURL string
	playbackErr error
	deleteErr   error
	deletedKeys []string
}

func (m *mockStorage) GeneratePlaybackURL(_ context.Context, _ string, _ time.Duration) (string, error) {
	return m.playbackURL, m.playbackErr
}

func (m *mockStorage) DeleteObject(_ context.Context, key string) error {
	m.deletedKeys = append(m.deletedKeys, key)
	return m.deleteErr
}

func newFeedRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "user_id", "title", "description", "storage_path", "created_at"})
}

func serveDetail(handler *Handler, id string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/api/videos/{id}", handler.Detail)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/videos/"+id, nil))
	return rec
}

// --- Feed ---

func TestFeed_EmptyTableReturnsEmptyList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	handler := NewHandler(mock, &mockStorage{playbackURL: "https://storage.example.com/x"})

	mock.ExpectQuery(`SELECT id, user_id, title, description, storage_path, created_at`).
		WithArgs(feedLimit).
		WillReturnRows(newFeedRows())

	rec := httptest.NewRecorder()
	handler.Feed(rec, httptest.NewRequest(http.MethodGet, "/api/videos", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp struct {
		Videos []feedItem `json:"videos"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Videos == nil {
		t.Fatal("expected empty list, not null; the page distinguishes empty from loading")
	}
	if len(resp.Videos) != 0 {
		t.Errorf("expected 0 videos, got %d", len(resp.Videos))
	}
}

func TestFeed_ReturnsNewestFirstWithPlaybackURLs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	handler := NewHandler(mock, &mockStorage{playbackURL: "https://storage.example.com/signed"})

	now := time.Now()
	mock.ExpectQuery(`SELECT id, user_id, title, description, storage_path, created_at`).
		WithArgs(feedLimit).
		WillReturnRows(newFeedRows().
			AddRow("vid-2", "user-1", "Second", "", "user-1/k2.mp4", now).
			AddRow("vid-1", "user-1", "First", "desc", "user-1/k1.mp4", now.Add(-time.Hour)))

	rec := httptest.NewRecorder()
	handler.Feed(rec, httptest.NewRequest(http.MethodGet, "/api/videos", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp struct {
		Videos []feedItem `json:"videos"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Videos) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(resp.Videos))
	}
	if resp.Videos[0].ID != "vid-2" {
		t.Errorf("expected newest video first, got %s", resp.Videos[0].ID)
	}
	if resp.Videos[0].PlaybackURL != "https://storage.example.com/signed" {
		t.Errorf("unexpected playback URL %q", resp.Videos[0].PlaybackURL)
	}
}

func TestFeed_OmitsItemsWhoseURLSigningFails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	handler := NewHandler(mock, &mockStorage{playbackErr: errors.New("presign failed")})

	mock.ExpectQuery(`SELECT id, user_id, title, description, storage_path, created_at`).
		WithArgs(feedLimit).
		WillReturnRows(newFeedRows().
			AddRow("vid-1", "user-1", "First", "", "user-1/k1.mp4", time.Now()))

	rec := httptest.NewRecorder()
	handler.Feed(rec, httptest.NewRequest(http.MethodGet, "/api/videos", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp struct {
		Videos []feedItem `json:"videos"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Videos) != 0 {
		t.Errorf("an item without a playback URL must be left out, got %d items", len(resp.Videos))
	}
}

func TestFeed_DBErrorSurfaced(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	handler := NewHandler(mock, &mockStorage{})

	mock.ExpectQuery(`SELECT id, user_id, title, description, storage_path, created_at`).
		WithArgs(feedLimit).
		WillReturnError(errors.New("connection refused"))

	rec := httptest.NewRecorder()
	handler.Feed(rec, httptest.NewRequest(http.MethodGet, "/api/videos", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}

// --- Detail ---

func TestDetail_NotFoundIsNullVideoNotError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	handler := NewHandler(mock, &mockStorage{})

	mock.ExpectQuery(`SELECT id, user_id, title, description, storage_path, created_at`).
		WithArgs("missing-id").
		WillReturnError(pgx.ErrNoRows)

	rec := serveDetail(handler, "missing-id")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp map[string]json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if string(resp["video"]) != "null" {
		t.Errorf("expected video=null, got %s", resp["video"])
	}
	if _, hasError := resp["error"]; hasError {
		t.Error("not-found must not carry an error field")
	}
}

func TestDetail_Found(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	handler := NewHandler(mock, &mockStorage{playbackURL: "https://storage.example.com/clip"})

	mock.ExpectQuery(`SELECT id, user_id, title, description, storage_path, created_at`).
		WithArgs("vid-1").
		WillReturnRows(newFeedRows().
			AddRow("vid-1", "user-1", "My clip", "about it", "user-1/k1.mp4", time.Now()))

	rec := serveDetail(handler, "vid-1")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var resp detailResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Video == nil {
		t.Fatal("expected video in response")
	}
	if resp.Video.PlaybackURL != "https://storage.example.com/clip" {
		t.Errorf("unexpected playback URL %q", resp.Video.PlaybackURL)
	}
}

func TestDetail_BackendErrorIsSurfaced(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	handler := NewHandler(mock, &mockStorage{})

	mock.ExpectQuery(`SELECT id, user_id, title, description, storage_path, created_at`).
		WithArgs("vid-1").
		WillReturnError(errors.New("backend down"))

	rec := serveDetail(handler, "vid-1")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("transport errors are real errors; expected %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}

// --- RecordView ---

func TestRecordView_InsertsRowAndReturns204(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	handler := NewHandler(mock, &mockStorage{})

	mock.ExpectExec(`INSERT INTO video_views`).
		WithArgs("vid-1", pgxmock.AnyArg(), pgxmock.AnyArg(), "", "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	r := chi.NewRouter()
	r.Post("/api/videos/{id}/view", handler.RecordView)

	req := httptest.NewRequest(http.MethodPost, "/api/videos/vid-1/view", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet pgxmock expectations: %v", err)
	}
}

func TestRecordView_DBErrorStillReturns204(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	handler := NewHandler(mock, &mockStorage{})

	mock.ExpectExec(`INSERT INTO video_views`).
		WithArgs("vid-1", pgxmock.AnyArg(), pgxmock.AnyArg(), "", "").
		WillReturnError(errors.New("insert failed"))

	r := chi.NewRouter()
	r.Post("/api/videos/{id}/view", handler.RecordView)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/videos/vid-1/view", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("a lost view record must not break playback; expected %d, got %d", http.StatusNoContent, rec.Code)
	}
}
