package atlassian

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/danielolaszy/atlas/internal/logging"
)

// AuthMode is the closed set of authentication variants. The mode is
// resolved once at configuration-load time and carried as an immutable
// value; it is never re-derived per call.
type AuthMode string

const (
	// AuthBasicAPIToken is Cloud-style authentication: HTTP basic auth
	// with the account email and an API token.
	AuthBasicAPIToken AuthMode = "basic"
	// AuthBearerPAT is Data Center-style authentication: a personal
	// access token sent as a bearer header.
	AuthBearerPAT AuthMode = "pat"
)

// requestTimeout bounds every outbound call.
const requestTimeout = 30 * time.Second

// Options configures a Client. BaseURL and one complete auth mode are
// required; HTTPClient overrides the transport (used by tests).
type Options struct {
	Service    string
	BaseURL    string
	APIVersion string
	AuthMode   AuthMode
	Username   string
	APIToken   string
	PATToken   string
	HTTPClient *http.Client
}

// Client is a blocking HTTP client for Atlassian REST APIs. It attaches
// the configured credentials, bounds each call with a timeout, decodes
// JSON responses, and classifies every failure into the error taxonomy.
// A Client is immutable after construction and safe for concurrent use.
type Client struct {
	service    string
	baseURL    string
	apiVersion string
	httpClient *http.Client
}

// basicAuthTransport injects basic-auth credentials into every request.
type basicAuthTransport struct {
	username string
	token    string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.SetBasicAuth(t.username, t.token)
	return t.base.RoundTrip(clone)
}

// NewClient creates a client for one backend. It performs no network I/O;
// credential problems surface as ConfigurationError before any request is
// built.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, Configurationf("Missing base URL for %s", opts.Service)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		switch opts.AuthMode {
		case AuthBearerPAT:
			ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.PATToken})
			httpClient = oauth2.NewClient(context.Background(), ts)
		case AuthBasicAPIToken:
			httpClient = &http.Client{
				Transport: &basicAuthTransport{
					username: opts.Username,
					token:    opts.APIToken,
					base:     http.DefaultTransport,
				},
			}
		default:
			return nil, Configurationf("Cannot build client for %s: unknown auth mode", opts.Service)
		}
		httpClient.Timeout = requestTimeout
	}

	return &Client{
		service:    opts.Service,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiVersion: opts.APIVersion,
		httpClient: httpClient,
	}, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIPath builds a versioned REST path, e.g. APIPath("issue/PROJ-1")
// yields "/rest/api/2/issue/PROJ-1" for API version 2.
func (c *Client) APIPath(endpoint string) string {
	return fmt.Sprintf("/rest/api/%s/%s", c.apiVersion, strings.TrimLeft(endpoint, "/"))
}

// Get performs a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Delete performs a DELETE request. Responses with no body are treated as
// success.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// GetText performs a GET request and returns the raw response body, for
// endpoints that serve plain text such as pull request diffs.
func (c *Client) GetText(ctx context.Context, path string, params url.Values) (string, error) {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", Validationf("Invalid request: %v", err)
	}
	req.Header.Set("Accept", "text/plain")

	requestID := uuid.NewString()
	logging.Debug("atlassian api request",
		"service", c.service,
		"request_id", requestID,
		"method", http.MethodGet,
		"path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if urlErr, ok := err.(*url.Error); ok && urlErr.Timeout() {
			return "", Networkf("Request timed out")
		}
		return "", Networkf("Connection failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Networkf("Network error: %v", err)
	}

	logging.Debug("atlassian api response",
		"service", c.service,
		"request_id", requestID,
		"status", resp.StatusCode)

	if resp.StatusCode >= 400 {
		return "", ClassifyStatus(resp.StatusCode, extractErrorMessage(data, resp.Status))
	}
	return string(data), nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return Validationf("Invalid request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return Validationf("Invalid request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	requestID := uuid.NewString()
	logging.Debug("atlassian api request",
		"service", c.service,
		"request_id", requestID,
		"method", method,
		"path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Networkf("Request timed out")
		}
		if urlErr, ok := err.(*url.Error); ok && urlErr.Timeout() {
			return Networkf("Request timed out")
		}
		return Networkf("Connection failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Networkf("Network error: %v", err)
	}

	logging.Debug("atlassian api response",
		"service", c.service,
		"request_id", requestID,
		"status", resp.StatusCode)

	if resp.StatusCode >= 400 {
		return ClassifyStatus(resp.StatusCode, extractErrorMessage(data, resp.Status))
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return APIf("Invalid response from server: %v", err)
	}
	return nil
}

// extractErrorMessage pulls a human-readable message out of the error body
// formats the three backends use: Jira's errorMessages array, Confluence's
// message key, and Bitbucket's errors array.
func extractErrorMessage(data []byte, fallback string) string {
	var body struct {
		ErrorMessages []string `json:"errorMessages"`
		Message       string   `json:"message"`
		ErrorText     string   `json:"error"`
		Errors        []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		switch {
		case len(body.ErrorMessages) > 0 && body.ErrorMessages[0] != "":
			return body.ErrorMessages[0]
		case body.Message != "":
			return body.Message
		case body.ErrorText != "":
			return body.ErrorText
		case len(body.Errors) > 0 && body.Errors[0].Message != "":
			return body.Errors[0].Message
		}
	}
	if text := strings.TrimSpace(string(data)); text != "" && len(text) < 200 {
		return text
	}
	return fallback
}

// ReplaceNotFound rewrites a NotFoundError message so it names the
// requested identifier; other errors pass through unchanged.
func ReplaceNotFound(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if e := AsError(err); e.Kind == ErrNotFound {
		return NotFoundf(format, args...)
	}
	return err
}
