package google

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	gcalendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const listResponse = `{
	"kind": "calendar#events",
	"items": [
		{"summary": "standup", "start": {"dateTime": "2024-03-05T09:30:00+01:00"}, "end": {"dateTime": "2024-03-05T09:45:00+01:00"}},
		{"summary": "holiday", "start": {"date": "2024-03-05"}, "end": {"date": "2024-03-06"}},
		{"summary": "broken", "start": {}, "end": {}}
	]
}`

func newTestSource(t *testing.T, handler http.HandlerFunc) *Source {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := gcalendar.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	loc := time.FixedZone("CET", 3600)
	return newSource(svc, Config{
		Location: loc,
		Now:      func() time.Time { return time.Date(2024, 3, 5, 14, 0, 0, 0, loc) },
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestListEvents(t *testing.T) {
	var query map[string]string
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/calendars/primary/events"), r.URL.Path)

		query = map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, listResponse)
	})

	events, err := src.ListEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "2024-03-05T00:00:00+01:00", query["timeMin"])
	assert.Equal(t, "true", query["singleEvents"])
	assert.Equal(t, "startTime", query["orderBy"])
	assert.Equal(t, "40", query["maxResults"])

	minute, ok := events[0].StartMinute()
	assert.True(t, ok)
	assert.Equal(t, 9*60+30, minute)

	minute, ok = events[1].StartMinute()
	assert.True(t, ok)
	assert.Equal(t, 0, minute)
	assert.True(t, events[1].Start.AllDay)

	_, ok = events[2].StartMinute()
	assert.False(t, ok, "events without a start are kept but not drawable")
}

func TestListEventsError(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"code": 401, "message": "unauthorized"}}`, http.StatusUnauthorized)
	})

	_, err := src.ListEvents(context.Background())
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	tok := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
	}

	require.NoError(t, SaveToken(path, tok))

	got, err := ReadToken(path)
	require.NoError(t, err)
	assert.Equal(t, tok.AccessToken, got.AccessToken)
	assert.Equal(t, tok.RefreshToken, got.RefreshToken)

	_, err = ReadToken(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

type failingCloser struct {
	strings.Builder
	closed int
}

func (f *failingCloser) Close() error {
	f.closed++
	return errors.New("disk full")
}

func TestWriteTokenReportsCloseError(t *testing.T) {
	var w failingCloser
	err := writeToken(&w, &oauth2.Token{AccessToken: "access"})
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 1, w.closed)
	assert.Contains(t, w.String(), "access")
}
