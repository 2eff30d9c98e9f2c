// Package fetch retrieves remote audio payloads over HTTP and answers
// connectivity probes for the resolver's offline handling.
package fetch

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/thall/resona/internal/domain"
	"github.com/thall/resona/internal/ports"
)

// HTTPFetcher implements ports.Fetcher using a shared http.Client.
type HTTPFetcher struct {
	logger *slog.Logger
	client *http.Client

	probeAddr    string
	probeTimeout time.Duration
}

// Options configure an HTTPFetcher.
type Options struct {
	// Timeout bounds a whole fetch including body read
	Timeout time.Duration
	// ProbeAddr is the host:port dialed by Online
	ProbeAddr string
	// ProbeTimeout bounds the connectivity probe dial
	ProbeTimeout time.Duration
}

// NewHTTPFetcher creates a fetcher with sane defaults for any zero
// option.
func NewHTTPFetcher(logger *slog.Logger, opts Options) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.ProbeAddr == "" {
		opts.ProbeAddr = "1.1.1.1:443"
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 2 * time.Second
	}

	return &HTTPFetcher{
		logger:       logger,
		client:       &http.Client{Timeout: opts.Timeout},
		probeAddr:    opts.ProbeAddr,
		probeTimeout: opts.ProbeTimeout,
	}
}

// Online reports whether the network is reachable. The answer is a
// point-in-time probe, not a guarantee the next fetch succeeds.
func (f *HTTPFetcher) Online() bool {
	conn, err := net.DialTimeout("tcp", f.probeAddr, f.probeTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Fetch downloads the payload at url. Payloads larger than limit bytes
// abort with domain.ErrPayloadTooLarge; limit zero means unbounded.
func (f *HTTPFetcher) Fetch(url string, limit int64) ([]byte, error) {
	resp, err := f.client.Get(url)
	if err != nil {
		return nil, domain.NewMediaError("fetch", url, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewMediaError("fetch", url,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	if limit > 0 && resp.ContentLength > limit {
		return nil, fmt.Errorf("%w: %d bytes advertised, limit %d",
			domain.ErrPayloadTooLarge, resp.ContentLength, limit)
	}

	var reader io.Reader = resp.Body
	if limit > 0 {
		// one extra byte distinguishes exactly-limit from over-limit
		reader = io.LimitReader(resp.Body, limit+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, domain.NewMediaError("fetch", url, "body read failed", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", domain.ErrPayloadTooLarge, limit)
	}

	f.logger.Debug("fetched remote payload",
		slog.String("url", url),
		slog.Int("bytes", len(data)))

	return data, nil
}

// Verify interface implementation
var _ ports.Fetcher = (*HTTPFetcher)(nil)
