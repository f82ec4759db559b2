package enrichlayer

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	maxErrorBody    = 256
)

// HTTPError is returned for any non-200 answer from the API.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("bad status: %s", e.Status)
	}
	return fmt.Sprintf("bad status: %s: %s", e.Status, e.Body)
}

// Kind names the failure class for per-entry diagnostics.
func (e *HTTPError) Kind() string { return "HTTPError" }

// DecodeError is returned when the API answers 200 with something that is not a JSON object.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Kind() string { return "DecodeError" }

var errNotObject = eris.New("response is not a JSON object")

// getObject makes a GET request and decodes the body as a JSON object.
func (c *Client) getObject(ctx context.Context, endpoint string, q url.Values) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "enrichlayer: create request")
	}

	req = c.setHeaders(req)
	req.Header.Set("Accept", contentType)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.request(req)
	if err != nil {
		return nil, eris.Wrapf(err, "enrichlayer: request %s", req.URL.Path)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, &DecodeError{Err: err}
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, eris.Wrap(err, "enrichlayer: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{
			URL:        req.URL.Path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       snippet(data),
		}
	}

	var target map[string]any
	if err := json.Unmarshal(data, &target); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if target == nil {
		return nil, &DecodeError{Err: errNotObject}
	}

	return target, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("path", req.URL.Path), zap.String("query", req.URL.RawQuery))

	return c.HTTPClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}
