package rewards

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// authTransport добавляет Bearer-токен и логирует каждый исходящий запрос.
type authTransport struct {
	base   http.RoundTripper
	apiKey string
	logger *log.Entry
}

func newAuthTransport(base http.RoundTripper, apiKey string, logger *log.Entry) *authTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{base: base, apiKey: apiKey, logger: logger}
}

// RoundTrip не изменяет исходный запрос: заголовки ставятся на клон.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.Header.Set("Authorization", "Bearer "+t.apiKey)
	out.Header.Set("Accept", "application/json")
	if out.Body != nil && out.Header.Get("Content-Type") == "" {
		out.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(out)
	fields := log.Fields{
		"method":      out.Method,
		"uri":         out.URL.String(),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		t.logger.WithError(err).WithFields(fields).Warn("rewards request failed")
		return nil, err
	}

	fields["status"] = resp.StatusCode
	t.logger.WithFields(fields).Debug("rewards request")
	return resp, nil
}
