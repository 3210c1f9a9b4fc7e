// Package aws implements the object-store access point for data mirrored on
// AWS S3. Points are constructed either from a normalized s3://bucket/key uri
// or from a bucket/key pair; both forms yield the same identity. Access is
// anonymous unless a credential profile is supplied in the provider's access
// metadata.
package aws

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/skyarchive/voaccess/internal/logger"
	"github.com/skyarchive/voaccess/pkg/access"
	"github.com/skyarchive/voaccess/pkg/errors"
	"github.com/skyarchive/voaccess/pkg/fsutil"
)

const (
	uriScheme = "s3://"

	defaultPartSize    = 8 * 1024 * 1024
	defaultConcurrency = 4
)

// Client is the subset of the S3 API the access point needs. It is satisfied
// by *s3.Client and by test fakes.
type Client interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Point is an access point for data on S3.
type Point struct {
	uri    string
	bucket string
	key    string

	region    string
	profile   string
	endpoint  string
	accessKey string
	secretKey string

	clientOnce sync.Once
	client     Client
	clientErr  error

	probeOnce sync.Once
	reachable bool
	reason    string
}

// Option customizes a Point.
type Option func(*Point)

// WithRegion sets the bucket region.
func WithRegion(region string) Option {
	return func(p *Point) { p.region = region }
}

// WithProfile sets the credential profile from ~/.aws/config used to
// authenticate. Without a profile, access is anonymous.
func WithProfile(profile string) Option {
	return func(p *Point) { p.profile = profile }
}

// WithEndpoint overrides the S3 endpoint (for S3-compatible stores).
func WithEndpoint(endpoint string) Option {
	return func(p *Point) { p.endpoint = endpoint }
}

// WithStaticCredentials sets a fixed key pair, typically for S3-compatible
// stores that do not use shared config profiles.
func WithStaticCredentials(accessKey, secretKey string) Option {
	return func(p *Point) {
		p.accessKey = accessKey
		p.secretKey = secretKey
	}
}

// WithClient injects a pre-built S3 client, bypassing config loading.
func WithClient(c Client) Option {
	return func(p *Point) { p.client = c }
}

// ParseURI splits an s3://bucket/key uri into its bucket and key.
func ParseURI(uri string) (bucket, key string, err error) {
	if !strings.HasPrefix(uri, uriScheme) {
		return "", "", errors.Wrapf(errors.ErrInvalidAccessSpec, "%q is not a valid s3 uri", uri)
	}
	rest := strings.TrimPrefix(uri, uriScheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", errors.Wrapf(errors.ErrInvalidAccessSpec, "%q should contain a bucket name and a key", uri)
	}
	return bucket, key, nil
}

// New creates an S3 access point from an s3://bucket/key uri.
func New(uri string, opts ...Option) (*Point, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	return newPoint(bucket, key, opts), nil
}

// NewFromPair creates an S3 access point from a bucket name and a key. The
// resulting identity equals that of the uri form.
func NewFromPair(bucket, key string, opts ...Option) (*Point, error) {
	if bucket == "" || key == "" {
		return nil, errors.Wrap(errors.ErrInvalidAccessSpec, "both bucket_name and key are required")
	}
	return newPoint(bucket, key, opts), nil
}

func newPoint(bucket, key string, opts []Option) *Point {
	p := &Point{
		uri:    uriScheme + bucket + "/" + key,
		bucket: bucket,
		key:    key,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provider returns the provider name tag.
func (p *Point) Provider() string { return access.ProviderAWS }

// ID returns the normalized s3 uri, which identifies the point within its provider.
func (p *Point) ID() string { return p.uri }

// ensureClient builds the S3 client once. A named profile selects shared
// credentials; otherwise requests go out unsigned.
func (p *Point) ensureClient(ctx context.Context) (Client, error) {
	p.clientOnce.Do(func() {
		if p.client != nil {
			return
		}
		var loadOpts []func(*awsconfig.LoadOptions) error
		if p.region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(p.region))
		}
		switch {
		case p.accessKey != "":
			loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(p.accessKey, p.secretKey, "")))
		case p.profile != "":
			loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(p.profile))
		default:
			loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(awssdk.AnonymousCredentials{}))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			p.clientErr = errors.Wrap(err, "failed to load aws config")
			return
		}
		p.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			if p.endpoint != "" {
				o.BaseEndpoint = awssdk.String(p.endpoint)
				o.UsePathStyle = true
			}
		})
	})
	return p.client, p.clientErr
}

// Probe checks whether the object answers a HeadObject call. The check runs
// once per instance; later calls return the memoized result.
func (p *Point) Probe(ctx context.Context) (bool, string) {
	p.probeOnce.Do(func() {
		client, err := p.ensureClient(ctx)
		if err != nil {
			p.reachable, p.reason = false, err.Error()
			return
		}
		_, err = client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: awssdk.String(p.bucket),
			Key:    awssdk.String(p.key),
		})
		if err != nil {
			p.reachable, p.reason = false, err.Error()
			return
		}
		p.reachable, p.reason = true, ""
	})
	return p.reachable, p.reason
}

// Download transfers the object to opts.Dir and returns the local path. With
// opts.Cache set, an existing local file whose size matches the object's
// ContentLength is reused without a transfer.
func (p *Point) Download(ctx context.Context, opts access.DownloadOptions) (string, error) {
	if opts.Dir == "" || !filepath.IsAbs(opts.Dir) {
		return "", fmt.Errorf("download dir must be absolute: %s: %w", opts.Dir, errors.ErrInvalidPath)
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	client, err := p.ensureClient(ctx)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(opts.Dir, fsutil.DirModeSecure); err != nil {
		return "", errors.Wrap(err, "could not create download dir")
	}

	localPath := filepath.Join(opts.Dir, path.Base(p.key))

	// Ask S3 for the expected content length; used for cache reuse and progress.
	var length int64 = -1
	head, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: awssdk.String(p.bucket),
		Key:    awssdk.String(p.key),
	})
	if err == nil && head.ContentLength != nil {
		length = *head.ContentLength
	}

	if opts.Cache && length > 0 {
		if st, statErr := os.Stat(localPath); statErr == nil {
			if st.Size() == length {
				logger.Info("found cached file with expected size", logger.Fields{"path": localPath, "size": st.Size()})
				return localPath, nil
			}
			logger.Debug("cached file size differs from object", logger.Fields{
				"path": localPath, "local": st.Size(), "remote": length,
			})
		}
	}

	logger.Info("downloading data", logger.Fields{"provider": p.Provider(), "uri": p.uri})

	tmp, err := os.CreateTemp(opts.Dir, "s3-*.tmp")
	if err != nil {
		return "", errors.Wrap(err, "could not create temp file")
	}
	tmpPath := tmp.Name()

	downloader := manager.NewDownloader(client, func(d *manager.Downloader) {
		d.PartSize = defaultPartSize
		d.Concurrency = defaultConcurrency
	})

	pw := &progressWriter{w: tmp, total: length, uri: p.uri}
	_, err = downloader.Download(ctx, pw, &s3.GetObjectInput{
		Bucket: awssdk.String(p.bucket),
		Key:    awssdk.String(p.key),
	})
	if closeErr := tmp.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return "", errors.Wrapf(errors.ErrDownloadFailed, "%s: %v", p.uri, err)
	}

	if err := fsutil.Move(tmpPath, localPath); err != nil {
		return "", errors.Wrap(err, "could not finalize file")
	}
	return localPath, nil
}

// Spec returns the catalog entry for the aws provider. The access metadata
// bundle carries the row-independent settings (profile, region, endpoint).
func Spec() access.Spec {
	return access.Spec{
		Params: []string{"uri", "bucket_name", "key", "region"},
		New: func(params access.Params, meta access.Metadata) (access.Point, error) {
			var opts []Option
			region := params["region"]
			if region == "" {
				region = meta["region"]
			}
			if region != "" {
				opts = append(opts, WithRegion(region))
			}
			if profile := meta["profile"]; profile != "" {
				opts = append(opts, WithProfile(profile))
			}
			if endpoint := meta["endpoint"]; endpoint != "" {
				opts = append(opts, WithEndpoint(endpoint))
			}
			if key := meta["access_key"]; key != "" {
				opts = append(opts, WithStaticCredentials(key, meta["secret_key"]))
			}

			if uri := params["uri"]; uri != "" {
				return New(uri, opts...)
			}
			if params["bucket_name"] != "" || params["key"] != "" {
				return NewFromPair(params["bucket_name"], params["key"], opts...)
			}
			return nil, errors.Wrap(errors.ErrInvalidAccessSpec, "parameters for aws are: uri, bucket_name, key, region")
		},
	}
}
