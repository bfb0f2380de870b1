package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	contractx "github.com/tanpawarit/task-maistro/agent/contract"
)

const (
	taskCountPath        = "/task-count/filter/"
	shiftLogPath         = "/time-log/filter/"
	maxResponseSizeBytes = 4 << 20
)

type Config struct {
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" default:"http://host.docker.internal:8000/api-sileo/v4/hqzen"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"15s"`
}

// Client calls the workforce API. The auth token is sent verbatim as the
// Authorization header, without a scheme prefix.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ contractx.Backend = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("backend base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

func (c *Client) TaskCount(ctx context.Context, authToken, workforceID string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("workforce_id", workforceID)
	return c.get(ctx, taskCountPath, query, authToken)
}

// ShiftLogs fetches the time logs recorded since shiftStart, an ISO-8601
// timestamp that is URL-encoded on the way out.
func (c *Client) ShiftLogs(ctx context.Context, authToken, employmentID, shiftStart string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("employment_id", employmentID)
	query.Set("shift_start", shiftStart)
	return c.get(ctx, shiftLogPath, query, authToken)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, authToken string) (json.RawMessage, error) {
	endpoint := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request %s: %v", contractx.ErrBackend, path, err)
	}
	req.Header.Set("Authorization", authToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", contractx.ErrBackend, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", contractx.ErrBackend, path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s http status=%d body=%s", contractx.ErrBackend, path, resp.StatusCode, string(raw))
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: %s returned malformed json", contractx.ErrBackend, path)
	}
	return json.RawMessage(raw), nil
}
