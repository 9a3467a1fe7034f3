package noko

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
	"github.com/partnerflow/partnerflow/pkg/utils/safe"
)

// DefaultBaseURL is the Noko v2 API root
const DefaultBaseURL = "https://api.nokotime.com/v2"

const tokenHeader = "X-NokoToken"

// ErrUserNotFound is returned when no Noko user has the given email
var ErrUserNotFound = goerr.New("noko user not found")

// Client manages Noko projects and user access
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ interfaces.NokoClient = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the API root
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Noko client authenticated with an admin token
func New(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, goerr.New("noko token is required")
	}

	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type project struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type user struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type projectQuery struct {
	Name string `url:"name"`
}

type createProjectRequest struct {
	Name string `json:"name"`
}

type userQuery struct {
	Email string `url:"email"`
}

type accessRequest struct {
	ProjectIDs []int64 `json:"project_ids"`
}

// GetOrCreateProject looks the project up by name and creates it when none matches
func (c *Client) GetOrCreateProject(ctx context.Context, name string) (*interfaces.NokoProject, error) {
	var found []project
	if err := c.do(ctx, http.MethodGet, "/projects", projectQuery{Name: name}, nil, &found); err != nil {
		return nil, goerr.Wrap(err, "failed to search noko project", goerr.V("name", name))
	}
	for _, p := range found {
		if p.Name == name {
			return &interfaces.NokoProject{ID: p.ID, Name: p.Name}, nil
		}
	}

	var created project
	if err := c.do(ctx, http.MethodPost, "/projects", nil, createProjectRequest{Name: name}, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create noko project", goerr.V("name", name))
	}

	logging.From(ctx).Info("noko project created", "project_id", created.ID, "name", name)
	return &interfaces.NokoProject{ID: created.ID, Name: created.Name, Created: true}, nil
}

// GetUserIDByEmail returns the Noko ID of the user with the given email
func (c *Client) GetUserIDByEmail(ctx context.Context, email string) (int64, error) {
	var users []user
	if err := c.do(ctx, http.MethodGet, "/users", userQuery{Email: email}, nil, &users); err != nil {
		return 0, goerr.Wrap(err, "failed to search noko user")
	}
	if len(users) == 0 {
		return 0, goerr.Wrap(ErrUserNotFound, "no noko user", goerr.V("email", email))
	}
	return users[0].ID, nil
}

// AssignProject gives the user access to the project and returns the user's ID
func (c *Client) AssignProject(ctx context.Context, email string, projectID int64) (int64, error) {
	userID, err := c.GetUserIDByEmail(ctx, email)
	if err != nil {
		return 0, err
	}

	path := "/users/" + strconv.FormatInt(userID, 10) + "/give_access_to_projects"
	body := accessRequest{ProjectIDs: []int64{projectID}}
	if err := c.do(ctx, http.MethodPut, path, nil, body, nil); err != nil {
		return 0, goerr.Wrap(err, "failed to give project access",
			goerr.V("user_id", userID), goerr.V("project_id", projectID))
	}
	return userID, nil
}

func (c *Client) do(ctx context.Context, method, path string, params, body, out any) error {
	endpoint := c.baseURL + path
	if params != nil {
		v, err := query.Values(params)
		if err != nil {
			return goerr.Wrap(err, "failed to encode query")
		}
		endpoint += "?" + v.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return goerr.Wrap(err, "failed to encode request body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return goerr.Wrap(err, "failed to build request", goerr.V("url", endpoint))
	}
	req.Header.Set(tokenHeader, c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(errors.Join(model.ErrUpstreamFetch, err), "noko request failed", goerr.V("method", method), goerr.V("url", endpoint))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return goerr.Wrap(model.ErrUpstreamFetch, "unexpected status from noko",
			goerr.V("method", method),
			goerr.V("url", endpoint),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(msg)))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return goerr.Wrap(model.ErrUpstreamFetch, "failed to decode noko response",
			goerr.V("url", endpoint), goerr.V("error", err.Error()))
	}
	return nil
}
