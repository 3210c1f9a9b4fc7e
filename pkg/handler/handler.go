// Package handler wires the discovery pipeline and the access points together.
// A Handler owns one access-point registry per product row and drives the
// probe/download/fallback scan for a chosen source provider.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/skyarchive/voaccess/internal/logger"
	"github.com/skyarchive/voaccess/pkg/access"
	"github.com/skyarchive/voaccess/pkg/access/aws"
	"github.com/skyarchive/voaccess/pkg/access/prem"
	"github.com/skyarchive/voaccess/pkg/datalink"
	"github.com/skyarchive/voaccess/pkg/discover"
	"github.com/skyarchive/voaccess/pkg/download"
	"github.com/skyarchive/voaccess/pkg/errors"
	"github.com/skyarchive/voaccess/pkg/table"
)

// URL column resolution, tried in order when no explicit column is given.
const (
	ucdAccessReference = "VOX:Image_AccessReference"
	ucdURLRef          = "meta.ref.url"
	literalURLColumn   = "access_url"
)

// Options configure handler construction.
type Options struct {
	// URLColumn names the direct-url column explicitly. When set, its absence
	// from the product is a configuration error. When empty, the column is
	// resolved from UCD tags and the conventional column name.
	URLColumn string

	// JSONColumn overrides the inline access column name (default cloud_access).
	JSONColumn string

	// Catalog lists the supported providers. Nil selects DefaultCatalog.
	Catalog access.Catalog

	// Metadata holds the per-provider access metadata bundles (credential
	// profile, region, endpoint).
	Metadata map[string]access.Metadata

	// Querier executes datalink calls. Nil disables datalink discovery.
	Querier datalink.Querier

	// HTTPTimeout and UserAgent configure the default catalog's HTTP stack.
	HTTPTimeout time.Duration
	UserAgent   string
}

// DownloadOptions control one Download batch.
type DownloadOptions struct {
	// Dir is the destination directory. Must be absolute.
	Dir string
	// NoFallback disables the on-prem rescan when the chosen source has no
	// reachable point.
	NoFallback bool
	// DryRun resolves each row to the identifier of the point that would be
	// used, without transferring anything.
	DryRun bool
	// Cache reuses local files whose size matches the remote object.
	Cache bool
	// Timeout bounds each row's transfer.
	Timeout time.Duration
}

// Result is the outcome for one product row. Exactly one of Path and Err is
// meaningful; a row that could not be served carries its last failure cause.
type Result struct {
	Row  int
	Path string
	Err  error
}

// Handler resolves and downloads the data behind every row of a product.
type Handler struct {
	product    table.Product
	catalog    access.Catalog
	registries []*access.Registry
}

// DefaultCatalog returns the baseline provider catalog (prem and aws) with a
// shared HTTP download manager.
func DefaultCatalog(httpTimeout time.Duration, userAgent string) access.Catalog {
	fetcher := download.NewManager(httpTimeout, userAgent)
	client := &http.Client{Timeout: httpTimeout}
	return access.Catalog{
		access.ProviderPrem: prem.Spec(fetcher, client, userAgent),
		access.ProviderAWS:  aws.Spec(),
	}
}

// New builds a handler for the product: it resolves the direct-url column,
// seeds every row's registry with its on-prem point and runs the discovery
// extractors for every other provider in the catalog. Construction fails on
// the first configuration or contract violation.
func New(ctx context.Context, product table.Product, opts Options) (*Handler, error) {
	if product == nil {
		return nil, errors.Wrap(errors.ErrInvalidProduct, "product is nil")
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = DefaultCatalog(opts.HTTPTimeout, opts.UserAgent)
	}
	if !catalog.Has(access.ProviderPrem) {
		return nil, errors.Wrapf(errors.ErrUnsupportedProvider, "catalog has no %q provider", access.ProviderPrem)
	}

	urlColumn, err := ResolveURLColumn(product, opts.URLColumn)
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved direct-url column", logger.Fields{"column": urlColumn})

	h := &Handler{
		product:    product,
		catalog:    catalog,
		registries: make([]*access.Registry, product.NumRows()),
	}

	premMeta := opts.Metadata[access.ProviderPrem]
	for row := 0; row < product.NumRows(); row++ {
		rawURL, ok := product.Value(row, urlColumn)
		if !ok {
			return nil, errors.Wrapf(errors.ErrInvalidAccessSpec, "row %d has no value in url column %q", row, urlColumn)
		}
		base, err := catalog.NewPoint(access.ProviderPrem, access.Params{"url": rawURL}, premMeta)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", row)
		}
		h.registries[row], err = access.NewRegistry(base)
		if err != nil {
			return nil, err
		}
	}

	for _, provider := range catalog.Names() {
		if provider == access.ProviderPrem {
			continue
		}
		if err := h.discoverProvider(ctx, provider, opts); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// discoverProvider runs the three extractors for one provider and registers
// the resulting points, in the fixed order json column, ucd column, datalink.
func (h *Handler) discoverProvider(ctx context.Context, provider string, opts Options) error {
	meta := opts.Metadata[provider]

	jsonRecords, err := discover.FromJSONColumn(h.product, opts.JSONColumn, provider)
	if err != nil {
		return err
	}
	ucdRecords, err := discover.FromUCD(h.product, provider, h.catalog)
	if err != nil {
		return err
	}
	linkRecords, err := discover.FromDatalink(ctx, h.product, provider, h.catalog, opts.Querier)
	if err != nil {
		return err
	}

	for row := 0; row < h.product.NumRows(); row++ {
		for _, records := range []discover.Records{jsonRecords, ucdRecords, linkRecords} {
			for _, params := range records[row] {
				point, err := h.catalog.NewPoint(provider, params, meta)
				if err != nil {
					return errors.Wrapf(err, "row %d provider %q", row, provider)
				}
				if err := h.registries[row].Add(point); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// NumRows returns the number of product rows the handler serves.
func (h *Handler) NumRows() int { return len(h.registries) }

// Registry exposes the access points discovered for one row.
func (h *Handler) Registry(row int) (*access.Registry, error) {
	if row < 0 || row >= len(h.registries) {
		return nil, errors.Wrapf(errors.ErrInvalidProduct, "row %d out of range", row)
	}
	return h.registries[row], nil
}

// Download resolves every row through the chosen source provider and returns
// one result per row. Rows fail softly: an unreachable or failing row yields
// a result carrying the last cause while the batch continues. Unless disabled,
// rows with no reachable source point fall back to their on-prem point.
func (h *Handler) Download(ctx context.Context, source string, opts DownloadOptions) ([]Result, error) {
	if !h.catalog.Has(source) {
		return nil, errors.Wrapf(errors.ErrUnsupportedProvider, "%q", source)
	}

	results := make([]Result, len(h.registries))
	for row := range h.registries {
		path, err := h.downloadRow(ctx, row, source, opts)
		results[row] = Result{Row: row, Path: path, Err: err}
		if err != nil {
			logger.Warn("row could not be served", logger.Fields{"row": row, "error": err.Error()})
		}
	}
	return results, nil
}

// downloadRow scans the row's source points in registration order, then the
// on-prem points when fallback applies.
func (h *Handler) downloadRow(ctx context.Context, row int, source string, opts DownloadOptions) (string, error) {
	reg := h.registries[row]

	candidates, err := reg.List(source)
	if err != nil {
		candidates = nil
	}
	path, lastErr := h.tryPoints(ctx, row, candidates, opts)
	if lastErr == nil {
		return path, nil
	}

	if !opts.NoFallback && source != access.ProviderPrem {
		logger.Info("falling back to on-prem access", logger.Fields{"row": row, "source": source})
		premPoints, err := reg.List(access.ProviderPrem)
		if err == nil {
			path, fbErr := h.tryPoints(ctx, row, premPoints, opts)
			if fbErr == nil {
				return path, nil
			}
			lastErr = fbErr
		}
	}
	return "", lastErr
}

// tryPoints probes candidates in order and downloads from the first reachable
// one. A failed transfer moves on to the next candidate. The returned error is
// the most specific cause seen.
func (h *Handler) tryPoints(ctx context.Context, row int, points []access.Point, opts DownloadOptions) (string, error) {
	var lastErr error = errors.Wrapf(errors.ErrNoAccessiblePoint, "row %d has no candidate access point", row)

	for _, p := range points {
		ok, reason := p.Probe(ctx)
		if !ok {
			logger.Debug("access point not reachable", logger.Fields{
				"row": row, "provider": p.Provider(), "id": p.ID(), "reason": reason,
			})
			lastErr = errors.Wrapf(errors.ErrNoAccessiblePoint, "%s: %s", p.ID(), reason)
			continue
		}
		if opts.DryRun {
			return p.ID(), nil
		}
		path, err := p.Download(ctx, access.DownloadOptions{
			Dir:     opts.Dir,
			Cache:   opts.Cache,
			Timeout: opts.Timeout,
		})
		if err != nil {
			logger.Warn("download failed, trying next access point", logger.Fields{
				"row": row, "id": p.ID(), "error": err.Error(),
			})
			lastErr = err
			continue
		}
		return path, nil
	}
	return "", lastErr
}

// ResolveURLColumn picks the direct-url column: the explicit name when given,
// then the image access-reference UCD, then the conventional column name, then
// the generic url-reference UCD.
func ResolveURLColumn(product table.Product, explicit string) (string, error) {
	names := product.Fieldnames()
	has := func(name string) bool {
		for _, n := range names {
			if n == name {
				return true
			}
		}
		return false
	}

	if explicit != "" {
		if !has(explicit) {
			return "", errors.Wrapf(errors.ErrColumnNotFound, "url column %q", explicit)
		}
		return explicit, nil
	}
	if col, ok := product.FieldByUCD(ucdAccessReference); ok {
		return col, nil
	}
	if has(literalURLColumn) {
		return literalURLColumn, nil
	}
	if col, ok := product.FieldByUCD(ucdURLRef); ok {
		return col, nil
	}
	return "", errors.Wrap(errors.ErrNoURLColumn, "no column with a direct access url")
}
