package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/jonwraymond/healthnotify/resilience"
)

// PostJSON posts payload as JSON to target and treats any non-2xx reply as an
// error. 4xx replies other than 429 are marked permanent so a retrying
// executor gives up on them immediately. Returned errors name only the
// scheme and host of target, since webhook paths often carry credentials.
func PostJSON(ctx context.Context, client *http.Client, target string, header http.Header, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return resilience.Permanent(fmt.Errorf("encode payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return resilience.Permanent(fmt.Errorf("create request: %w", redactURLError(err)))
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post: %w", redactURLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	statusErr := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return resilience.Permanent(statusErr)
	}
	return statusErr
}

// redactURLError cuts the URL in a *url.Error down to scheme and host. The
// Op and the underlying error are kept.
func redactURLError(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	redacted := "[redacted]"
	if u, perr := url.Parse(uerr.URL); perr == nil && u.Host != "" {
		redacted = u.Scheme + "://" + u.Host
	}
	return &url.Error{Op: uerr.Op, URL: redacted, Err: uerr.Err}
}
