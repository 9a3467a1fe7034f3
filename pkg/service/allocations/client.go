package allocations

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
	"github.com/partnerflow/partnerflow/pkg/utils/safe"
)

// DefaultTimeout bounds every request to the allocations service
const DefaultTimeout = 30 * time.Second

const tokenHeader = "api-token"

// Client talks to the allocations service
type Client struct {
	partnersURL   string
	placementsURL string
	token         string
	httpClient    *http.Client
}

var _ interfaces.AllocationsClient = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithRootCAs verifies server certificates against pool
func WithRootCAs(pool *x509.CertPool) Option {
	return func(client *Client) {
		client.httpClient = &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
					RootCAs:    pool,
				},
			},
		}
	}
}

// LoadCACert reads a PEM bundle and returns the system pool extended with it
func LoadCACert(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read CA certificate", goerr.V("path", path))
	}

	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(data) {
		return nil, goerr.New("no certificate found in CA bundle", goerr.V("path", path))
	}
	return pool, nil
}

// New creates an allocations client. The API token is sent on every request.
func New(partnersURL, placementsURL, token string, opts ...Option) (*Client, error) {
	if partnersURL == "" {
		return nil, goerr.New("partners URL is required")
	}
	if placementsURL == "" {
		return nil, goerr.New("placements URL is required")
	}
	if token == "" {
		return nil, goerr.New("allocations API token is required")
	}

	c := &Client{
		partnersURL:   strings.TrimRight(partnersURL, "/"),
		placementsURL: placementsURL,
		token:         token,
		httpClient:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type placementsQuery struct {
	Status string `url:"status"`
}

type placementsResponse struct {
	Values []*model.Placement `json:"values"`
}

// GetPartner fetches the partner profile. A profile without an identifier
// gets the requested ID.
func (c *Client) GetPartner(ctx context.Context, partnerID string) (*model.Partner, error) {
	endpoint := c.partnersURL + "/" + url.PathEscape(partnerID)

	var partner model.Partner
	if err := c.get(ctx, endpoint, &partner); err != nil {
		return nil, goerr.Wrap(err, "failed to get partner", goerr.V("partner_id", partnerID))
	}
	if partner.PartnerID == "" {
		partner.PartnerID = partnerID
	}
	return &partner, nil
}

// ListPlacements returns every placement in the given status
func (c *Client) ListPlacements(ctx context.Context, status string) ([]*model.Placement, error) {
	v, err := query.Values(placementsQuery{Status: status})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode placements query")
	}

	endpoint := c.placementsURL
	if strings.Contains(endpoint, "?") {
		endpoint += "&" + v.Encode()
	} else {
		endpoint += "?" + v.Encode()
	}

	var resp placementsResponse
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to list placements", goerr.V("status", status))
	}
	return resp.Values, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to build request", goerr.V("url", endpoint))
	}
	req.Header.Set(tokenHeader, c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(errors.Join(model.ErrUpstreamFetch, err), "allocations request failed", goerr.V("url", endpoint))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return goerr.Wrap(model.ErrUpstreamFetch, "unexpected status from allocations",
			goerr.V("url", endpoint),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return goerr.Wrap(model.ErrUpstreamFetch, "failed to decode allocations response",
			goerr.V("url", endpoint), goerr.V("error", err.Error()))
	}

	logging.From(ctx).Debug("allocations request done", "url", endpoint, "status", resp.StatusCode)
	return nil
}
