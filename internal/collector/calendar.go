package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/fakeyudi/recall/internal/event"
	"github.com/fakeyudi/recall/internal/httpclient"
)

// ErrCalendarCredentials is returned when no usable access token is stored.
var ErrCalendarCredentials = errors.New("could not find calendar credentials; run the OAuth setup and store token.json")

const defaultCalendarURL = "https://www.googleapis.com/calendar/v3"

// Calendar lists the user's meetings from the Google Calendar v3 API.
type Calendar struct {
	baseURL    string
	tokenPath  string
	calendarID string
}

func init() {
	Register("calendar", func(s Settings) (Collector, error) {
		return NewCalendar(s), nil
	})
}

// NewCalendar builds a Calendar collector. Settings: base_url, token_path,
// calendar_id (default "primary").
func NewCalendar(s Settings) *Calendar {
	tokenPath := s.Get("token_path", "RECALL_CALENDAR_TOKEN")
	if tokenPath == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			tokenPath = filepath.Join(dir, "recall", "token.json")
		}
	}
	return &Calendar{
		baseURL:    s.GetOr("base_url", defaultCalendarURL),
		tokenPath:  tokenPath,
		calendarID: s.GetOr("calendar_id", "primary"),
	}
}

func (c *Calendar) Name() string { return "Calendar" }

// storedToken accepts both the google-auth "token" key and a plain
// "access_token".
type storedToken struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
}

func (c *Calendar) accessToken() (string, error) {
	if c.tokenPath == "" {
		return "", ErrCalendarCredentials
	}
	data, err := os.ReadFile(c.tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrCalendarCredentials, c.tokenPath)
		}
		return "", err
	}
	var tok storedToken
	if err := json.Unmarshal(data, &tok); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCalendarCredentials, err)
	}
	switch {
	case tok.Token != "":
		return tok.Token, nil
	case tok.AccessToken != "":
		return tok.AccessToken, nil
	}
	return "", fmt.Errorf("%w: no access token in %s", ErrCalendarCredentials, c.tokenPath)
}

type calendarTime struct {
	DateTime string `json:"dateTime"`
	Date     string `json:"date"`
}

type calendarItem struct {
	Summary  string       `json:"summary"`
	HTMLLink string       `json:"htmlLink"`
	Start    calendarTime `json:"start"`
}

type calendarPage struct {
	Items         []calendarItem `json:"items"`
	NextPageToken string         `json:"nextPageToken"`
}

// Collect lists single (expanded) events starting inside window.
func (c *Calendar) Collect(ctx context.Context, window event.Window) ([]event.Event, error) {
	token, err := c.accessToken()
	if err != nil {
		return nil, err
	}
	client := httpclient.New(c.baseURL, httpclient.WithBearer(token))
	path := "/calendars/" + url.PathEscape(c.calendarID) + "/events"

	var events []event.Event
	pageToken := ""
	for {
		q := url.Values{
			"timeMin":      {window.Start.Format(time.RFC3339)},
			"timeMax":      {window.End.Format(time.RFC3339Nano)},
			"singleEvents": {"true"},
			"orderBy":      {"startTime"},
		}
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}
		var page calendarPage
		if err := client.GetJSON(ctx, path, q, &page); err != nil {
			return nil, fmt.Errorf("an API error occurred: %w", err)
		}
		for _, item := range page.Items {
			ts, ok := item.Start.at(window.Start.Location())
			if !ok {
				slog.Debug("skipping calendar event without a start", "summary", item.Summary)
				continue
			}
			events = append(events, event.Event{
				Timestamp:   ts,
				Source:      c.Name(),
				Description: "Meeting: " + item.Summary,
				URL:         item.HTMLLink,
			})
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}
	return filterWindow(events, window), nil
}

// at resolves the start of an event. All-day events are placed at noon of
// their date in loc.
func (t calendarTime) at(loc *time.Location) (time.Time, bool) {
	if t.DateTime != "" {
		ts, err := time.Parse(time.RFC3339, t.DateTime)
		return ts, err == nil
	}
	if t.Date != "" {
		d, err := time.ParseInLocation(time.DateOnly, t.Date, loc)
		if err != nil {
			return time.Time{}, false
		}
		return d.Add(12 * time.Hour), true
	}
	return time.Time{}, false
}
