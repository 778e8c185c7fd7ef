package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/nqhuy/edusystem/core"
)

// TokenSource supplies a fresh identity-provider bearer token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client is the shared HTTP layer under every resource client. Authenticated
// and unauthenticated endpoints funnel through the same request path: when no
// session exists the request still fires without an Authorization header, so
// that "read without login" endpoints keep working.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  core.Logger
}

func NewClient(conf *core.Config, tokens TokenSource, logger core.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(conf.API.BaseURL, "/"),
		http:    &http.Client{Timeout: conf.API.RequestTimeout},
		tokens:  tokens,
		logger:  logger,
	}
}

// BaseURL returns the normalized backend base URL (no trailing slash).
func (c *Client) BaseURL() string { return c.baseURL }

type requestOptions struct {
	method      string
	body        interface{}
	requireAuth bool
}

// request performs a JSON API call and decodes the response into out (when
// out is non-nil). Non-2xx responses come back as *core.APIError carrying the
// HTTP status.
func (c *Client) request(ctx context.Context, endpoint string, opts requestOptions, out interface{}) error {
	method := opts.method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.body != nil {
		data, err := json.Marshal(opts.body)
		if err != nil {
			return errors.Wrap(err, "marshaling request body")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(ctx, req, opts.requireAuth)

	return c.do(req, out)
}

// authorize attaches a bearer token when required. It fails open: without a
// session (or on a token fetch error) the request proceeds unauthenticated
// and the backend decides.
func (c *Client) authorize(ctx context.Context, req *http.Request, requireAuth bool) {
	if !requireAuth || c.tokens == nil {
		return
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.logger.Debug(fmt.Sprintf("token fetch failed, sending unauthenticated %s %s: %v", req.Method, req.URL.Path, err))
		return
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decoding %s %s response", req.Method, req.URL.Path)
	}
	return nil
}

func (c *Client) apiError(resp *http.Response) error {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Detail == "" {
		payload.Detail = resp.Status
	}
	apiErr := core.NewAPIError(resp.StatusCode, payload.Detail)
	c.logger.Debug(fmt.Sprintf("API error [%s %s]: %v", resp.Request.Method, resp.Request.URL.Path, apiErr))
	return apiErr
}

// upload performs an authenticated multipart upload of a single "file" field.
// Content-Type is left to the multipart writer so the boundary is set.
func (c *Client) upload(ctx context.Context, endpoint, filename string, file io.Reader, out interface{}) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return errors.Wrap(err, "creating form file")
	}
	if _, err = io.Copy(part, file); err != nil {
		return errors.Wrap(err, "copying file contents")
	}
	if err = mw.Close(); err != nil {
		return errors.Wrap(err, "closing multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return errors.Wrap(err, "building upload request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.authorize(ctx, req, true)

	return c.do(req, out)
}

// MessageResponse is the `{"message": "..."}` acknowledgment shape used by
// several mutation endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}
