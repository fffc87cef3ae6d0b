// Package harvest wraps the external time-tracking service's paginated
// collection endpoints behind a small fetch-all client.
package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	perPage        = 100
	requestTimeout = 30 * time.Second
	userAgent      = "ms-planner/1.0"
)

type Config struct {
	BaseURL   string
	AccountID string
	Token     string
}

// API fetches whole collections page by page. Requests carry a bearer
// token plus the account id header and are throttled to the service's
// documented budget of 100 requests per 15 seconds.
type API struct {
	baseURL   string
	accountID string
	httpc     *http.Client
	limiter   *rate.Limiter
}

func New(cfg Config) *API {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	httpc := oauth2.NewClient(context.Background(), src)
	httpc.Timeout = requestTimeout

	return &API{
		baseURL:   cfg.BaseURL,
		accountID: cfg.AccountID,
		httpc:     httpc,
		limiter:   rate.NewLimiter(rate.Limit(100.0/15.0), 10),
	}
}

// FetchClients walks every /clients page, optionally bounded to records
// updated since the given instant.
func (a *API) FetchClients(ctx context.Context, since *time.Time) ([]Client, error) {
	var out []Client
	page := 1
	for {
		var body clientsPage
		if err := a.getPage(ctx, "clients", "/clients", page, since, &body); err != nil {
			return nil, err
		}
		out = append(out, body.Clients...)
		if body.NextPage == nil {
			break
		}
		page = *body.NextPage
	}
	return out, nil
}

func (a *API) FetchProjects(ctx context.Context, since *time.Time) ([]Project, error) {
	var out []Project
	page := 1
	for {
		var body projectsPage
		if err := a.getPage(ctx, "projects", "/projects", page, since, &body); err != nil {
			return nil, err
		}
		out = append(out, body.Projects...)
		if body.NextPage == nil {
			break
		}
		page = *body.NextPage
	}
	return out, nil
}

func (a *API) FetchUsers(ctx context.Context, since *time.Time) ([]User, error) {
	var out []User
	page := 1
	for {
		var body usersPage
		if err := a.getPage(ctx, "users", "/users", page, since, &body); err != nil {
			return nil, err
		}
		out = append(out, body.Users...)
		if body.NextPage == nil {
			break
		}
		page = *body.NextPage
	}
	return out, nil
}

func (a *API) getPage(ctx context.Context, resource, path string, page int, since *time.Time, v any) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}

	u, err := url.Parse(a.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	if since != nil {
		q.Set("updated_since", since.UTC().Format(time.RFC3339))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Harvest-Account-Id", a.accountID)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{Resource: resource, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s page %d: %w", resource, page, err)
	}
	return nil
}
