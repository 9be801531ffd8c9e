package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/example/worrybox/internal/core/worry"
	"github.com/example/worrybox/internal/ctxutil"
	"github.com/example/worrybox/internal/metrics"
	"github.com/example/worrybox/internal/ports/primary"
)

// mockWorryReader implements WorryReader for testing.
type mockWorryReader struct {
	getFn     func(ctx context.Context, id string) (*worry.Worry, error)
	listFn    func(ctx context.Context, view worry.View) ([]*worry.Worry, error)
	historyFn func(ctx context.Context, id string) ([]*primary.Activity, error)
}

func (m *mockWorryReader) Get(ctx context.Context, id string) (*worry.Worry, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, worry.ErrNotFound
}

func (m *mockWorryReader) List(ctx context.Context, view worry.View) ([]*worry.Worry, error) {
	if m.listFn != nil {
		return m.listFn(ctx, view)
	}
	return nil, nil
}

func (m *mockWorryReader) History(ctx context.Context, id string) ([]*primary.Activity, error) {
	if m.historyFn != nil {
		return m.historyFn(ctx, id)
	}
	return nil, nil
}

// mockActionService implements primary.NotificationActionService for testing.
type mockActionService struct {
	err       error
	gotAction string
	gotWorry  string
	gotSource string
	callCount int
}

func (m *mockActionService) HandleAction(ctx context.Context, actionID, worryID string) error {
	m.callCount++
	m.gotAction = actionID
	m.gotWorry = worryID
	m.gotSource = ctxutil.SourceFromContext(ctx)
	return m.err
}

// recordingMetrics captures HTTP statuses.
type recordingMetrics struct {
	metrics.Nop
	statuses []int
}

func (r *recordingMetrics) RecordHTTPStatus(code int) { r.statuses = append(r.statuses, code) }

var _ primary.NotificationActionService = (*mockActionService)(nil)

func newTestRouter(reader *mockWorryReader, actions *mockActionService) http.Handler {
	return NewRouter(Deps{Worries: reader, Actions: actions, Logger: zerolog.Nop()})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNotificationAction(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantCalled bool
	}{
		{name: "done", body: `{"actionId":"done","worryId":"w-1"}`, wantStatus: http.StatusNoContent, wantCalled: true},
		{name: "unknown action", body: `{"actionId":"later","worryId":"w-1"}`, serviceErr: primary.ErrUnknownAction, wantStatus: http.StatusBadRequest, wantCalled: true},
		{name: "unknown worry", body: `{"actionId":"open","worryId":"nope"}`, serviceErr: worry.ErrNotFound, wantStatus: http.StatusNotFound, wantCalled: true},
		{name: "terminal worry", body: `{"actionId":"snooze","worryId":"w-1"}`, serviceErr: worry.ErrInvalidTransition, wantStatus: http.StatusConflict, wantCalled: true},
		{name: "port failure", body: `{"actionId":"done","worryId":"w-1"}`, serviceErr: errors.New("disk full"), wantStatus: http.StatusInternalServerError, wantCalled: true},
		{name: "bad json", body: `{"actionId":`, wantStatus: http.StatusBadRequest},
		{name: "unknown field", body: `{"actionId":"done","worryId":"w-1","x":1}`, wantStatus: http.StatusBadRequest},
		{name: "missing worry id", body: `{"actionId":"done"}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actions := &mockActionService{err: tt.serviceErr}
			rec := do(t, newTestRouter(&mockWorryReader{}, actions), http.MethodPost, "/notifications/actions", tt.body)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if (actions.callCount > 0) != tt.wantCalled {
				t.Errorf("HandleAction called = %v, want %v", actions.callCount > 0, tt.wantCalled)
			}
			if tt.wantStatus >= http.StatusBadRequest {
				var body errorBody
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
					t.Fatalf("error body is not JSON: %v", err)
				}
				if body.Code == "" {
					t.Error("error body has no code")
				}
			}
		})
	}
}

func TestNotificationAction_TagsSource(t *testing.T) {
	actions := &mockActionService{}
	do(t, newTestRouter(&mockWorryReader{}, actions), http.MethodPost, "/notifications/actions", `{"actionId":"open","worryId":"w-9"}`)

	if actions.gotAction != "open" || actions.gotWorry != "w-9" {
		t.Errorf("HandleAction(%q, %q), want (open, w-9)", actions.gotAction, actions.gotWorry)
	}
	if actions.gotSource != ctxutil.SourceNotification {
		t.Errorf("source = %q, want %q", actions.gotSource, ctxutil.SourceNotification)
	}
}

func TestListWorries(t *testing.T) {
	var gotView worry.View
	reader := &mockWorryReader{
		listFn: func(ctx context.Context, view worry.View) ([]*worry.Worry, error) {
			gotView = view
			return []*worry.Worry{{ID: "w-1", Content: "rent", Status: worry.StatusLocked}}, nil
		},
	}
	h := newTestRouter(reader, &mockActionService{})

	rec := do(t, h, http.MethodGet, "/worries?status=locked", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotView != worry.ViewLocked {
		t.Errorf("view = %q, want %q", gotView, worry.ViewLocked)
	}
	var got []worry.Worry
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].ID != "w-1" {
		t.Errorf("body = %+v, want one worry w-1", got)
	}

	rec = do(t, h, http.MethodGet, "/worries?status=sideways", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown status: status = %d, want 400", rec.Code)
	}
}

func TestListWorries_EmptyIsArray(t *testing.T) {
	rec := do(t, newTestRouter(&mockWorryReader{}, &mockActionService{}), http.MethodGet, "/worries", "")
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

func TestGetWorry(t *testing.T) {
	reader := &mockWorryReader{
		getFn: func(ctx context.Context, id string) (*worry.Worry, error) {
			if id != "w-1" {
				return nil, worry.ErrNotFound
			}
			return &worry.Worry{ID: "w-1", Content: "rent", Status: worry.StatusUnlocked}, nil
		},
	}
	h := newTestRouter(reader, &mockActionService{})

	if rec := do(t, h, http.MethodGet, "/worries/w-1", ""); rec.Code != http.StatusOK {
		t.Errorf("GET /worries/w-1 status = %d, want 200", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/worries/w-2", ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET /worries/w-2 status = %d, want 404", rec.Code)
	}
}

func TestWorryHistory(t *testing.T) {
	at := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)
	reader := &mockWorryReader{
		historyFn: func(ctx context.Context, id string) ([]*primary.Activity, error) {
			return []*primary.Activity{
				{Action: "create", Source: "cli", ToStatus: "locked", At: at},
				{Action: "unlock", Source: "dispatcher", FromStatus: "locked", ToStatus: "unlocked", Detail: "expired", At: at.Add(time.Hour)},
			}, nil
		},
	}
	rec := do(t, newTestRouter(reader, &mockActionService{}), http.MethodGet, "/worries/w-1/history", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got []activityJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[1].Detail != "expired" || got[1].FromStatus != "locked" {
		t.Errorf("history = %+v", got)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.NewCollector(reg)
	h := NewRouter(Deps{Worries: &mockWorryReader{}, Actions: &mockActionService{}, Gatherer: reg, Logger: zerolog.Nop()})

	if rec := do(t, h, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}
	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "worrybox_notifications_dispatched_total") {
		t.Error("metrics output missing worrybox_notifications_dispatched_total")
	}
}

func TestRateLimit(t *testing.T) {
	h := NewRouter(Deps{
		Worries:   &mockWorryReader{},
		Actions:   &mockActionService{},
		Logger:    zerolog.Nop(),
		RateLimit: rate.Every(time.Hour),
		Burst:     2,
	})

	for i := 0; i < 2; i++ {
		if rec := do(t, h, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}
	rec := do(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

func TestRequestLogger_RecordsStatus(t *testing.T) {
	rec := &recordingMetrics{}
	h := NewRouter(Deps{Worries: &mockWorryReader{}, Actions: &mockActionService{}, Metrics: rec, Logger: zerolog.Nop()})

	do(t, h, http.MethodGet, "/healthz", "")
	do(t, h, http.MethodGet, "/worries/missing", "")

	want := []int{http.StatusOK, http.StatusNotFound}
	if len(rec.statuses) != len(want) {
		t.Fatalf("statuses = %v, want %v", rec.statuses, want)
	}
	for i := range want {
		if rec.statuses[i] != want[i] {
			t.Errorf("statuses[%d] = %d, want %d", i, rec.statuses[i], want[i])
		}
	}
}
