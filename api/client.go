package api

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
	clienterrors "github.com/jrsteele09/community-client/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const requestIDHeader = "X-Request-Id"

// maximum error body read when extracting a server message
const maxErrorBody = 64 << 10

type apiRequest struct {
	method      string
	path        string
	queryParams map[string]string
	tokenSource oauth2.TokenSource // nil for unauthenticated endpoints
	reqBodyObj  interface{}
	respObj     interface{}
}

// validator is implemented by response types that can check their own shape
// after decoding.
type validator interface {
	validate() error
}

// Client talks to the community backend's REST API.
type Client struct {
	apiAddress string
	httpClient *http.Client
	timeout    time.Duration
	logger     zerolog.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds every request. Zero leaves requests unbounded.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient returns a client for the backend at apiAddress
// (e.g. "https://api.example.com").
func NewClient(apiAddress string, options ...ClientOption) *Client {
	c := &Client{
		apiAddress: strings.TrimRight(apiAddress, "/"),
		httpClient: http.DefaultClient,
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Client) executeAPIRequest(ctx context.Context, apiReq apiRequest) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.submitAPIRequest(ctx, apiReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if apiReq.respObj == nil {
		return nil
	}
	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "error reading response body")
	}
	v, mustValidate := apiReq.respObj.(validator)
	if len(bytes.TrimSpace(respBodyBytes)) == 0 && !mustValidate {
		return nil
	}
	if err := json.Unmarshal(respBodyBytes, apiReq.respObj); err != nil {
		return errors.Wrapf(clienterrors.ErrInvalidResponse, "%s %s: %s", apiReq.method, apiReq.path, err)
	}
	if mustValidate {
		if err := v.validate(); err != nil {
			return errors.Wrapf(clienterrors.ErrInvalidResponse, "%s %s: %s", apiReq.method, apiReq.path, err)
		}
	}
	return nil
}

func (c *Client) submitAPIRequest(ctx context.Context, apiReq apiRequest) (*http.Response, error) {
	var reqBodyReader io.Reader
	if apiReq.reqBodyObj != nil {
		reqBodyBytes, err := json.Marshal(apiReq.reqBodyObj)
		if err != nil {
			return nil, errors.Wrap(err, "error marshaling request body")
		}
		reqBodyReader = bytes.NewBuffer(reqBodyBytes)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		apiReq.method,
		fmt.Sprintf("%s/%s", c.apiAddress, strings.TrimLeft(apiReq.path, "/")),
		reqBodyReader,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "error creating request %s %s", apiReq.method, apiReq.path)
	}
	if len(apiReq.queryParams) > 0 {
		q := req.URL.Query()
		for k, v := range apiReq.queryParams {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)

	if apiReq.tokenSource != nil {
		tok, err := apiReq.tokenSource.Token()
		if err != nil {
			return nil, errors.Wrapf(err, "error getting token for %s %s", apiReq.method, apiReq.path)
		}
		tok.SetAuthHeader(req)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("request_id", requestID).Str("method", apiReq.method).Str("path", apiReq.path).Msg("api request failed")
		return nil, errors.Wrap(err, "error invoking API")
	}
	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", apiReq.method).
		Str("path", apiReq.path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, newAPIError(resp)
	}
	return resp, nil
}

// pathEscape builds a path from segments, escaping each one.
func pathEscape(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}
