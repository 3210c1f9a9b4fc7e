package download

import (
	"context"
	"net/url"
)

// Fetcher defines the interface for downloading remote files over HTTP. It
// replaces ad-hoc HTTP downloading with a higher-level, testable API that
// supports cache reuse and integrity verification.
type Fetcher interface {
	// Fetch downloads a single item to a deterministic location (within
	// opts.Dir). It returns the absolute local file path.
	Fetch(ctx context.Context, item Item, opts Options) (string, error)

	// FetchAll downloads multiple items concurrently and returns a map of
	// item IDs to downloaded file paths. Items sharing a URL are fetched
	// once.
	FetchAll(ctx context.Context, items []Item, opts Options) (map[string]string, error)

	// Head returns the remote Content-Length for an item, or a negative
	// value when the server does not report one.
	Head(ctx context.Context, item Item) (int64, error)
}

// Item represents one remote resource to download.
type Item struct {
	ID       string   // stable identifier (e.g., the access point id). Must be unique within a batch.
	URL      *url.URL // source URL to download
	Checksum string   // optional hex-encoded SHA-256 checksum; if provided, will be verified
	Filename string   // optional preferred filename; if empty, a name will be derived
}

// Options control the behavior of the download manager.
type Options struct {
	Dir         string // destination directory (cache). Must be absolute.
	Cache       bool   // reuse an existing local file when its size matches the remote Content-Length
	Concurrency int    // worker count for FetchAll; <= 0 selects a default
}
