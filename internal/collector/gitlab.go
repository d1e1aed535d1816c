package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fakeyudi/recall/internal/event"
	"github.com/fakeyudi/recall/internal/httpclient"
)

const gitlabPerPage = 100

// ErrGitLabAuth is returned when GitLab rejects the private token.
var ErrGitLabAuth = errors.New("GitLab authentication failed, check your token")

// GitLab lists the user's contribution events from the GitLab REST API.
type GitLab struct {
	baseURL string
	token   string
	userID  string
}

func init() {
	Register("gitlab", func(s Settings) (Collector, error) {
		return NewGitLab(s), nil
	})
}

// NewGitLab builds a GitLab collector. Settings fall back to GITLAB_URL,
// GITLAB_PRIVATE_TOKEN and GITLAB_USER_ID.
func NewGitLab(s Settings) *GitLab {
	return &GitLab{
		baseURL: s.GetOr("url", "https://gitlab.com", "GITLAB_URL"),
		token:   s.Get("token", "GITLAB_PRIVATE_TOKEN"),
		userID:  s.Get("user_id", "GITLAB_USER_ID"),
	}
}

func (g *GitLab) Name() string { return "GitLab" }

type gitlabPushData struct {
	CommitCount int    `json:"commit_count"`
	Ref         string `json:"ref"`
}

type gitlabNote struct {
	Body   string `json:"body"`
	WebURL string `json:"web_url"`
}

type gitlabEvent struct {
	CreatedAt   time.Time       `json:"created_at"`
	ActionName  string          `json:"action_name"`
	ProjectID   int             `json:"project_id"`
	TargetType  string          `json:"target_type"`
	TargetIID   int             `json:"target_iid"`
	TargetTitle string          `json:"target_title"`
	PushData    *gitlabPushData `json:"push_data"`
	Note        *gitlabNote     `json:"note"`
}

type gitlabProject struct {
	WebURL string `json:"web_url"`
}

// Collect fetches every event after the day before window.Start and keeps
// those inside window.
func (g *GitLab) Collect(ctx context.Context, window event.Window) ([]event.Event, error) {
	if g.token == "" || g.userID == "" {
		return nil, fmt.Errorf("%w: token and user_id (or $GITLAB_PRIVATE_TOKEN and $GITLAB_USER_ID)", ErrMissingSetting)
	}
	client := httpclient.New(strings.TrimRight(g.baseURL, "/")+"/api/v4",
		httpclient.WithHeader("PRIVATE-TOKEN", g.token))

	var me struct {
		ID int `json:"id"`
	}
	if err := client.GetJSON(ctx, "/user", nil, &me); err != nil {
		var apiErr *httpclient.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return nil, ErrGitLabAuth
		}
		return nil, fmt.Errorf("failed to connect to GitLab: %w", err)
	}

	// "after" is exclusive, date-only and read in UTC.
	after := window.Start.UTC().AddDate(0, 0, -1).Format(time.DateOnly)
	var raw []gitlabEvent
	for page := 1; ; page++ {
		q := url.Values{
			"after":    {after},
			"per_page": {strconv.Itoa(gitlabPerPage)},
			"page":     {strconv.Itoa(page)},
		}
		var batch []gitlabEvent
		if err := client.GetJSON(ctx, "/users/"+url.PathEscape(g.userID)+"/events", q, &batch); err != nil {
			return nil, fmt.Errorf("failed to list GitLab events: %w", err)
		}
		raw = append(raw, batch...)
		if len(batch) < gitlabPerPage {
			break
		}
	}

	projects := map[int]string{}
	var events []event.Event
	for _, ge := range raw {
		if !window.Contains(ge.CreatedAt) {
			continue
		}
		events = append(events, event.Event{
			Timestamp:   ge.CreatedAt.UTC(),
			Source:      g.Name(),
			Description: ge.summary(),
			URL:         g.targetURL(ctx, client, ge, projects),
		})
	}
	return events, nil
}

func branchName(ref string) string {
	return ref[strings.LastIndex(ref, "/")+1:]
}

// summary renders a one-line description of a GitLab event. Comments carry
// their body after a blank line.
func (ge gitlabEvent) summary() string {
	target := ge.TargetType
	switch ge.ActionName {
	case "pushed to", "pushed new":
		if ge.PushData != nil {
			return fmt.Sprintf("Pushed %d commit(s) to branch '%s'", ge.PushData.CommitCount, branchName(ge.PushData.Ref))
		}
	case "commented on":
		body := ""
		if ge.Note != nil {
			body = ge.Note.Body
		}
		return fmt.Sprintf("Commented on %s:\n\n%s\n", strings.ToLower(target), body)
	case "opened", "closed", "merged":
		return fmt.Sprintf("%s %s: %s", strings.ToUpper(ge.ActionName[:1])+ge.ActionName[1:], strings.ToLower(target), ge.TargetTitle)
	}
	return strings.TrimSpace(ge.ActionName + " " + target)
}

// targetURL points at the most specific page for ge. Project URLs are
// looked up once per project; a failed lookup is cached as "".
func (g *GitLab) targetURL(ctx context.Context, client *httpclient.Client, ge gitlabEvent, projects map[int]string) string {
	if ge.ActionName == "commented on" && ge.Note != nil && ge.Note.WebURL != "" {
		return ge.Note.WebURL
	}
	if ge.ProjectID == 0 {
		return ""
	}
	base, ok := projects[ge.ProjectID]
	if !ok {
		var p gitlabProject
		if err := client.GetJSON(ctx, "/projects/"+strconv.Itoa(ge.ProjectID), nil, &p); err == nil {
			base = p.WebURL
		}
		projects[ge.ProjectID] = base
	}
	if base == "" {
		return ""
	}

	switch {
	case ge.TargetType == "MergeRequest" && ge.TargetIID != 0:
		return fmt.Sprintf("%s/-/merge_requests/%d", base, ge.TargetIID)
	case ge.TargetType == "Issue" && ge.TargetIID != 0:
		return fmt.Sprintf("%s/-/issues/%d", base, ge.TargetIID)
	case strings.HasPrefix(ge.ActionName, "pushed") && ge.PushData != nil:
		return base + "/-/commits/" + branchName(ge.PushData.Ref)
	}
	return base
}
