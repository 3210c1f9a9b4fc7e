//go:generate mockgen -destination=./mocks/access.go -package=mocks . Point

// Package access defines the access-point capability: one concrete,
// provider-specific way to retrieve a single data file. It also provides the
// per-row Registry that groups discovered access points by provider and the
// Catalog describing the supported providers.
package access

import (
	"context"
	"time"
)

// Provider names of the baseline providers.
const (
	ProviderPrem = "prem"
	ProviderAWS  = "aws"
)

// Params is one raw provider-parameter record produced by the discovery
// pipeline, e.g. {"bucket_name": "b", "key": "k"}.
type Params map[string]string

// Metadata is the row-independent access metadata bundle for a provider,
// resolved once at handler construction (e.g. a named credential profile).
type Metadata map[string]string

// DownloadOptions control a single access point transfer.
type DownloadOptions struct {
	// Dir is the destination directory. Must be absolute.
	Dir string
	// Cache skips the transfer when a local file with the expected size is
	// already present.
	Cache bool
	// Timeout bounds the transfer; zero means no deadline beyond ctx.
	Timeout time.Duration
}

// Point is the capability interface implemented by every provider variant.
// Implementations are immutable after construction except for the memoized
// probe result and are never shared across rows.
type Point interface {
	// Provider returns the provider name tag ("prem", "aws", ...).
	Provider() string

	// ID returns the provider-specific unique identifier (the URL for prem,
	// the normalized s3://bucket/key URI for aws). Used for deduplication.
	ID() string

	// Probe performs a lightweight existence check exactly once per instance
	// and returns the memoized result afterwards. A negative outcome is
	// reported as (false, reason), never as an error.
	Probe(ctx context.Context) (bool, string)

	// Download transfers the object to local storage and returns the local
	// path. Transfer failures are recoverable errors; the orchestrator moves
	// on to the next candidate.
	Download(ctx context.Context, opts DownloadOptions) (string, error)
}
