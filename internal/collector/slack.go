package collector

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fakeyudi/recall/internal/event"
	"github.com/fakeyudi/recall/internal/httpclient"
)

const defaultSlackURL = "https://slack.com/api"

var mentionPattern = regexp.MustCompile(`<@(U[A-Z0-9]+)(?:\|.*?)?>`)

// SlackError is a Web API response with "ok": false.
type SlackError struct {
	Method string
	Code   string
}

func (e *SlackError) Error() string {
	return fmt.Sprintf("slack %s: %s", e.Method, e.Code)
}

// Slack finds the messages the user sent through the search API.
type Slack struct {
	baseURL string
	token   string
}

func init() {
	Register("slack", func(s Settings) (Collector, error) {
		return NewSlack(s), nil
	})
}

// NewSlack builds a Slack collector. The user token comes from the "token"
// setting or SLACK_USER_TOKEN.
func NewSlack(s Settings) *Slack {
	return &Slack{
		baseURL: s.GetOr("base_url", defaultSlackURL),
		token:   s.Get("token", "SLACK_USER_TOKEN"),
	}
}

func (s *Slack) Name() string { return "Slack" }

type slackEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type slackMatch struct {
	TS        string `json:"ts"`
	Text      string `json:"text"`
	Permalink string `json:"permalink"`
	Channel   struct {
		Name string `json:"name"`
	} `json:"channel"`
}

type slackSearch struct {
	slackEnvelope
	Messages struct {
		Matches []slackMatch `json:"matches"`
		Paging  struct {
			Page  int `json:"page"`
			Pages int `json:"pages"`
		} `json:"paging"`
	} `json:"messages"`
}

type slackUsers struct {
	slackEnvelope
	Members []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"members"`
	ResponseMetadata struct {
		NextCursor string `json:"next_cursor"`
	} `json:"response_metadata"`
}

type slackResponse interface {
	envelope() slackEnvelope
}

// call invokes a Web API method and turns "ok": false into *SlackError.
func call(ctx context.Context, c *httpclient.Client, method string, q url.Values, dest slackResponse) error {
	if err := c.GetJSON(ctx, "/"+method, q, dest); err != nil {
		return err
	}
	if env := dest.envelope(); !env.OK {
		return &SlackError{Method: method, Code: env.Error}
	}
	return nil
}

func (e *slackEnvelope) envelope() slackEnvelope { return *e }

// Collect searches "from:me on:<date>" and keeps matches inside window.
// A failing users.list only loses mention names; a failing search keeps
// whatever pages were already read.
func (s *Slack) Collect(ctx context.Context, window event.Window) ([]event.Event, error) {
	if s.token == "" {
		return nil, fmt.Errorf("%w: token (or $SLACK_USER_TOKEN)", ErrMissingSetting)
	}
	client := httpclient.New(s.baseURL, httpclient.WithBearer(s.token))

	if err := call(ctx, client, "auth.test", nil, &slackEnvelope{}); err != nil {
		return nil, fmt.Errorf("slack authentication failed, check your token: %w", err)
	}

	users, err := s.users(ctx, client)
	if err != nil {
		slog.Warn("could not fetch user list from Slack", "err", err)
	}

	query := "from:me on:" + window.Start.Format(time.DateOnly)
	var events []event.Event
	for page := 1; ; page++ {
		var res slackSearch
		q := url.Values{
			"query": {query},
			"sort":  {"timestamp"},
			"count": {"100"},
			"page":  {strconv.Itoa(page)},
		}
		if err := call(ctx, client, "search.messages", q, &res); err != nil {
			slog.Warn("could not perform Slack search", "err", err)
			break
		}
		for _, m := range res.Messages.Matches {
			ts, ok := parseSlackTS(m.TS)
			if !ok || !window.Contains(ts) {
				continue
			}
			events = append(events, event.Event{
				Timestamp:   ts,
				Source:      s.Name(),
				Description: fmt.Sprintf("Message in #%s:\n\n%s\n", m.Channel.Name, replaceMentions(m.Text, users)),
				URL:         m.Permalink,
			})
		}
		if page >= res.Messages.Paging.Pages {
			break
		}
	}
	return events, nil
}

func (s *Slack) users(ctx context.Context, client *httpclient.Client) (map[string]string, error) {
	names := map[string]string{}
	cursor := ""
	for {
		q := url.Values{"limit": {"200"}}
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		var res slackUsers
		if err := call(ctx, client, "users.list", q, &res); err != nil {
			return names, err
		}
		for _, m := range res.Members {
			if m.ID != "" && m.Name != "" {
				names[m.ID] = m.Name
			}
		}
		if res.ResponseMetadata.NextCursor == "" {
			return names, nil
		}
		cursor = res.ResponseMetadata.NextCursor
	}
}

// replaceMentions rewrites <@U123|label> as @name, falling back to the id.
func replaceMentions(text string, users map[string]string) string {
	return mentionPattern.ReplaceAllStringFunc(text, func(m string) string {
		id := mentionPattern.FindStringSubmatch(m)[1]
		if name, ok := users[id]; ok {
			return "@" + name
		}
		return "@" + id
	})
}

// parseSlackTS converts "1709632800.123456" to a UTC time without going
// through float64.
func parseSlackTS(ts string) (time.Time, bool) {
	secStr, fracStr, _ := strings.Cut(ts, ".")
	sec, err := strconv.ParseInt(secStr, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	var nsec int64
	if fracStr != "" {
		if len(fracStr) > 9 {
			fracStr = fracStr[:9]
		}
		fracStr += strings.Repeat("0", 9-len(fracStr))
		n, err := strconv.ParseUint(fracStr, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		nsec = int64(n)
	}
	return time.Unix(sec, nsec).UTC(), true
}
