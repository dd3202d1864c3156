// Package httploader loads cache values from a remote HTTP metadata service.
//
// A value for key k is fetched with GET <base URL>/k and decoded from JSON.
// Transient failures (connection errors, 5xx, 429) are retried with backoff
// before the load is reported as failed.
package httploader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrNotFound is returned when the service has no value for a key.
var ErrNotFound = errors.New("not found")

// StatusError is returned for any non-OK response other than 404.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Body)
	}
	return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
}

// Loader fetches JSON documents of type V by key.
type Loader[V any] struct {
	url    *url.URL
	client *retryablehttp.Client
	header http.Header
}

// New creates a Loader for the service at baseURL.
func New[V any](baseURL string, options ...Option) (*Loader[V], error) {
	opts, err := getOpts(options)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("url must have http or https scheme: %s", baseURL)
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = opts.httpClient
	rc.Logger = nil
	rc.RetryMax = opts.retryMax
	rc.RetryWaitMin = opts.retryWaitMin
	rc.RetryWaitMax = opts.retryWaitMax
	rc.CheckRetry = retryablehttp.DefaultRetryPolicy
	rc.Backoff = retryablehttp.DefaultBackoff
	// Hand the last response back instead of a generic "giving up" error, so
	// the status can be reported.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Loader[V]{
		url:    u,
		client: rc,
		header: opts.header,
	}, nil
}

// Load fetches and decodes the document for key.
func (l *Loader[V]) Load(ctx context.Context, key string) (V, error) {
	var v V

	u := l.url.JoinPath(key)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return v, err
	}
	for k, vals := range l.header {
		for _, val := range vals {
			req.Header.Add(k, val)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return v, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return v, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return v, fmt.Errorf("%s: %w", key, ErrNotFound)
	default:
		return v, &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err = json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("cannot decode response for %s: %w", key, err)
	}
	return v, nil
}

func (l *Loader[V]) String() string {
	return l.url.String()
}
