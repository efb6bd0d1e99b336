package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

const maxPageBytes = 4 * 1024 * 1024

// fetcher issues page GETs against YouTube. The underlying HTTP client is
// long-lived and shared across requests; it holds no per-request state.
// When a stealth browser client is configured it is preferred, since search
// and playlist pages are served differently to fingerprinted clients.
type fetcher struct {
	httpClient *http.Client
	browser    *engine.BrowserClient
}

// getPage fetches rawURL with browser-like headers under the given timeout
// and returns the body. Non-2xx statuses are errors.
func (f *fetcher) getPage(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if f.browser != nil {
		headers := engine.ChromeHeaders()
		headers["accept-language"] = "en-US,en;q=0.9"
		// BrowserClient.Do has no context of its own; scope the call inside
		// RetryDo so the per-fetch deadline still bounds the attempt loop.
		data, err := engine.RetryDo(ctx, engine.DefaultRetryConfig, func() ([]byte, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			body, _, status, err := f.browser.Do("GET", rawURL, headers, nil)
			if err != nil {
				return nil, err
			}
			if status < 200 || status >= 300 {
				return nil, fmt.Errorf("HTTP %d", status)
			}
			return body, nil
		})
		if err != nil {
			return nil, err
		}
		if len(data) > maxPageBytes {
			data = data[:maxPageBytes]
		}
		return data, nil
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		return f.httpClient.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
}
