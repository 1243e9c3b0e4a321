package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	xhttp "PatientPulse/pkg/http"

	"github.com/cenkalti/backoff/v4"
)

// HTTPServiceBase holds the client and base URL shared by remote model calls.
type HTTPServiceBase struct {
	baseURL string
	client  *xhttp.Client
}

// NewHTTPServiceBase builds an HTTP client with the given timeout (3s when unset).
func NewHTTPServiceBase(baseURL string, timeout time.Duration) *HTTPServiceBase {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPServiceBase{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// PostJSON posts payload to path under baseURL and decodes the JSON reply into dest.
func (b *HTTPServiceBase) PostJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	if b.client == nil || b.baseURL == "" {
		return fmt.Errorf("model http client not initialized")
	}
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    b.baseURL + path,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: payload,
	}, dest)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return nil
}

// PostJSONWithRetry makes up to attempts calls with exponential backoff.
// Client errors other than 429 are not retried.
func (b *HTTPServiceBase) PostJSONWithRetry(ctx context.Context, path string, payload interface{}, dest interface{}, attempts int) error {
	if attempts <= 1 {
		return b.PostJSON(ctx, path, payload, dest)
	}
	bf := backoff.NewExponentialBackOff()
	bf.InitialInterval = 50 * time.Millisecond
	bf.MaxInterval = time.Second
	policy := backoff.WithContext(backoff.WithMaxRetries(bf, uint64(attempts-1)), ctx)
	return backoff.Retry(func() error {
		err := b.PostJSON(ctx, path, payload, dest)
		var se *xhttp.StatusError
		if errors.As(err, &se) && !se.Temporary() {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}
