// Package prem implements the on-premises access point: a direct HTTP(S) URL
// to the data file served by the archive itself. Every row of a data product
// gets exactly one prem point as its baseline; it is also the fallback target
// when a preferred provider proves unreachable.
package prem

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/skyarchive/voaccess/internal/logger"
	"github.com/skyarchive/voaccess/pkg/access"
	"github.com/skyarchive/voaccess/pkg/download"
	"github.com/skyarchive/voaccess/pkg/errors"
)

const defaultProbeTimeout = 30 * time.Second

// Point is an on-prem access point with a direct url.
type Point struct {
	url       *url.URL
	client    *http.Client
	fetcher   download.Fetcher
	userAgent string

	probeOnce sync.Once
	reachable bool
	reason    string
}

// Option customizes a Point.
type Option func(*Point)

// WithHTTPClient sets the client used for reachability probes.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Point) { p.client = c }
}

// WithFetcher sets the download manager used for transfers.
func WithFetcher(f download.Fetcher) Option {
	return func(p *Point) { p.fetcher = f }
}

// WithUserAgent sets the User-Agent for probes and transfers.
func WithUserAgent(ua string) Option {
	return func(p *Point) { p.userAgent = ua }
}

// New creates an on-prem access point for the given url.
func New(rawURL string, opts ...Option) (*Point, error) {
	if rawURL == "" {
		return nil, errors.Wrap(errors.ErrInvalidAccessSpec, "no on-prem url has been defined")
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Wrapf(errors.ErrInvalidAccessSpec, "%q is not a valid url", rawURL)
	}

	p := &Point{url: u}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: defaultProbeTimeout}
	}
	if p.fetcher == nil {
		p.fetcher = download.NewManager(0, p.userAgent)
	}
	return p, nil
}

// Provider returns the provider name tag.
func (p *Point) Provider() string { return access.ProviderPrem }

// ID returns the url, which identifies the point within its provider.
func (p *Point) ID() string { return p.url.String() }

// Probe checks whether the url answers an HTTP HEAD with status 200. The
// check runs once per instance; later calls return the memoized result.
func (p *Point) Probe(ctx context.Context) (bool, string) {
	p.probeOnce.Do(func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url.String(), http.NoBody)
		if err != nil {
			p.reachable, p.reason = false, err.Error()
			return
		}
		if p.userAgent != "" {
			req.Header.Set("User-Agent", p.userAgent)
		}
		resp, err := p.client.Do(req)
		if err != nil {
			p.reachable, p.reason = false, err.Error()
			return
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode == http.StatusOK {
			p.reachable, p.reason = true, ""
		} else {
			p.reachable, p.reason = false, resp.Status
		}
	})
	return p.reachable, p.reason
}

// Download transfers the file to opts.Dir and returns the local path.
func (p *Point) Download(ctx context.Context, opts access.DownloadOptions) (string, error) {
	logger.Info("downloading data", logger.Fields{"provider": p.Provider(), "url": p.url.String()})

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	item := download.Item{
		ID:       p.ID(),
		URL:      p.url,
		Filename: filenameFor(p.url),
	}
	return p.fetcher.Fetch(ctx, item, download.Options{Dir: opts.Dir, Cache: opts.Cache})
}

// Spec returns the catalog entry for the prem provider. The fetcher, client
// and user agent are shared by every point the entry constructs.
func Spec(fetcher download.Fetcher, client *http.Client, userAgent string) access.Spec {
	return access.Spec{
		Params: []string{"url"},
		New: func(params access.Params, _ access.Metadata) (access.Point, error) {
			var opts []Option
			if fetcher != nil {
				opts = append(opts, WithFetcher(fetcher))
			}
			if client != nil {
				opts = append(opts, WithHTTPClient(client))
			}
			if userAgent != "" {
				opts = append(opts, WithUserAgent(userAgent))
			}
			return New(params["url"], opts...)
		},
	}
}

func filenameFor(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return ""
	}
	return name
}
