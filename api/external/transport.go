/* transport.go
 * Contains the RoundTripper decorator that logs outgoing api requests when debug logging is enabled
 */

package external

import (
	"log/slog"
	"net/http"
	"time"
)

// debugTransport logs each request and its status at debug level. Headers are never logged, so the bearer token
// added by the oauth2 transport stays out of the output
type debugTransport struct {
	wrappedRT http.RoundTripper
	logger    *slog.Logger
}

// RoundTrip logs around the underlying transport
func (t *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.logger.Enabled(req.Context(), slog.LevelDebug) {
		return t.wrappedRT.RoundTrip(req)
	}

	start := time.Now()
	t.logger.Debug("challonge request", "method", req.Method, "path", req.URL.Path, "query", req.URL.RawQuery)

	resp, err := t.wrappedRT.RoundTrip(req)
	if err != nil {
		t.logger.Debug("challonge request failed", "path", req.URL.Path, "error", err)
		return nil, err
	}
	t.logger.LogAttrs(req.Context(), slog.LevelDebug, "challonge response",
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))
	return resp, nil
}
