// Package proxy relays frontend requests to the swap backend, injecting the
// backend base URL and API key so the credential never reaches the client.
package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"omniswap/pkg/api"
)

// Handler is the relay. Query parameters and bodies pass through verbatim;
// upstream failures are wrapped as {message, error} envelopes.
type Handler struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *logrus.Entry
}

// NewHandler creates a relay for the given upstream.
func NewHandler(baseURL, apiKey string, log *logrus.Entry) *Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Handler{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	upstream := h.baseURL + r.URL.Path
	if r.URL.RawQuery != "" {
		upstream += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, upstream, r.Body)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to build upstream request", err)
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(api.APIKeyHeader, h.apiKey)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.log.WithError(err).WithField("path", r.URL.Path).Warn("upstream request failed")
		h.writeError(w, http.StatusInternalServerError, "upstream request failed", err)
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	written, _ := io.Copy(w, resp.Body)

	h.log.WithFields(logrus.Fields{
		"method":   r.Method,
		"path":     r.URL.Path,
		"status":   resp.StatusCode,
		"bytes":    written,
		"duration": time.Since(started).Round(time.Millisecond).String(),
	}).Info("relayed request")
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, cause error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"message": message,
		"error":   cause.Error(),
	})
}
