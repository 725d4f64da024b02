// Package google lists calendar events from Google Calendar.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"
	gcalendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"libdb.so/bloclock/calendar"
)

// DefaultMaxResults caps the number of events fetched per poll.
const DefaultMaxResults = 40

// Config configures the Google Calendar source.
type Config struct {
	// CalendarID is the calendar to read, usually "primary".
	CalendarID string
	// MaxResults caps the number of events per poll.
	MaxResults int64
	// Location is the time zone that defines "today". Defaults to time.Local.
	Location *time.Location
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Source lists today's events of one calendar.
type Source struct {
	svc    *gcalendar.Service
	cfg    Config
	logger *slog.Logger
}

var _ calendar.Source = (*Source)(nil)

// NewSource creates a source using the given authorized HTTP client.
func NewSource(ctx context.Context, client *http.Client, cfg Config, logger *slog.Logger) (*Source, error) {
	svc, err := gcalendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create calendar service")
	}
	return newSource(svc, cfg, logger), nil
}

func newSource(svc *gcalendar.Service, cfg Config, logger *slog.Logger) *Source {
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Source{svc: svc, cfg: cfg, logger: logger}
}

// ListEvents implements calendar.Source. It returns the single events of the
// current day ordered by start time.
func (s *Source) ListEvents(ctx context.Context) ([]calendar.Event, error) {
	now := s.cfg.Now().In(s.cfg.Location)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.cfg.Location)
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Millisecond)

	res, err := s.svc.Events.List(s.cfg.CalendarID).
		TimeMin(dayStart.Format(time.RFC3339)).
		TimeMax(dayEnd.Format(time.RFC3339)).
		MaxResults(s.cfg.MaxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list events")
	}

	events := make([]calendar.Event, 0, len(res.Items))
	for _, item := range res.Items {
		events = append(events, s.convert(item))
	}
	return events, nil
}

// convert turns an API event into a calendar.Event. Times that cannot be
// parsed are left zero so that the event is skipped when drawing.
func (s *Source) convert(item *gcalendar.Event) calendar.Event {
	ev := calendar.Event{
		Summary: item.Summary,
		ColorID: item.ColorId,
	}

	if start, err := parseEventDateTime(item.Start, s.cfg.Location); err == nil {
		ev.Start = start
	} else {
		s.logger.Debug(
			"skipping malformed event start",
			"summary", item.Summary,
			"error", err)
	}

	if end, err := parseEventDateTime(item.End, s.cfg.Location); err == nil {
		ev.End = end
	}

	return ev
}

func parseEventDateTime(t *gcalendar.EventDateTime, loc *time.Location) (calendar.Moment, error) {
	if t == nil {
		return calendar.Moment{}, calendar.ErrNoTime
	}
	return calendar.ParseMoment(t.Date, t.DateTime, loc)
}

// OAuthConfig reads the OAuth client credentials file downloaded from the
// Google Cloud console.
func OAuthConfig(credentialsPath string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read credentials")
	}

	cfg, err := oauthgoogle.ConfigFromJSON(b, gcalendar.CalendarReadonlyScope)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse credentials")
	}
	return cfg, nil
}

// Client returns an HTTP client authorized with the token stored at
// tokenPath. The token is refreshed automatically when it expires.
func Client(ctx context.Context, cfg *oauth2.Config, tokenPath string) (*http.Client, error) {
	tok, err := ReadToken(tokenPath)
	if err != nil {
		return nil, err
	}
	return cfg.Client(ctx, tok), nil
}

// ReadToken reads a token saved by SaveToken.
func ReadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open token")
	}
	defer f.Close()

	var tok oauth2.Token
	if err := json.NewDecoder(f).Decode(&tok); err != nil {
		return nil, errors.Wrap(err, "failed to decode token")
	}
	return &tok, nil
}

// SaveToken writes tok to path, readable only by the owner.
func SaveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return errors.Wrap(err, "failed to create token file")
	}

	return writeToken(f, tok)
}

// writeToken encodes tok into w and closes it. A failed close is reported,
// since the token may not have been written completely.
func writeToken(w io.WriteCloser, tok *oauth2.Token) error {
	if err := json.NewEncoder(w).Encode(tok); err != nil {
		w.Close()
		return errors.Wrap(err, "failed to encode token")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "failed to write token file")
	}
	return nil
}

// Authorize runs the offline consent flow: it prints the consent URL to out,
// reads the authorization code from in and exchanges it for a token.
func Authorize(ctx context.Context, cfg *oauth2.Config, in io.Reader, out io.Writer) (*oauth2.Token, error) {
	url := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintln(out, "Authorize this app by visiting this url:", url)
	fmt.Fprint(out, "Enter the code from that page here: ")

	var code string
	if _, err := fmt.Fscan(in, &code); err != nil {
		return nil, errors.Wrap(err, "failed to read authorization code")
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "failed to exchange authorization code")
	}
	return tok, nil
}
