package aws

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyarchive/voaccess/pkg/access"
	"github.com/skyarchive/voaccess/pkg/errors"
)

// fakeClient serves a fixed payload for a single bucket/key.
type fakeClient struct {
	bucket  string
	key     string
	payload []byte

	headErr error
	heads   atomic.Int32
	gets    atomic.Int32
}

func (f *fakeClient) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.heads.Add(1)
	if f.headErr != nil {
		return nil, f.headErr
	}
	if *params.Bucket != f.bucket || *params.Key != f.key {
		return nil, fmt.Errorf("NotFound: no such object %s/%s", *params.Bucket, *params.Key)
	}
	return &s3.HeadObjectOutput{ContentLength: awssdk.Int64(int64(len(f.payload)))}, nil
}

func (f *fakeClient) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.gets.Add(1)
	if *params.Bucket != f.bucket || *params.Key != f.key {
		return nil, fmt.Errorf("NoSuchKey: %s/%s", *params.Bucket, *params.Key)
	}
	size := len(f.payload)
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(f.payload)),
		ContentLength: awssdk.Int64(int64(size)),
		ContentRange:  awssdk.String(fmt.Sprintf("bytes 0-%d/%d", size-1, size)),
	}, nil
}

func TestParseURI(t *testing.T) {
	tests := []struct {
		name        string
		uri         string
		bucket      string
		key         string
		expectError bool
	}{
		{name: "valid uri", uri: "s3://survey/images/a.fits", bucket: "survey", key: "images/a.fits"},
		{name: "missing scheme", uri: "survey/images/a.fits", expectError: true},
		{name: "missing key", uri: "s3://survey", expectError: true},
		{name: "empty bucket", uri: "s3:///a.fits", expectError: true},
		{name: "empty", uri: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, err := ParseURI(tt.uri)
			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidAccessSpec)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestNewIdentity(t *testing.T) {
	fromURI, err := New("s3://survey/images/a.fits")
	require.NoError(t, err)

	fromPair, err := NewFromPair("survey", "images/a.fits")
	require.NoError(t, err)

	// both forms describe the same object
	assert.Equal(t, fromURI.ID(), fromPair.ID())
	assert.Equal(t, access.ProviderAWS, fromURI.Provider())

	_, err = NewFromPair("survey", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidAccessSpec)
}

func TestProbeMemoized(t *testing.T) {
	client := &fakeClient{bucket: "survey", key: "a.fits", payload: []byte("data")}
	p, err := New("s3://survey/a.fits", WithClient(client))
	require.NoError(t, err)

	ok, reason := p.Probe(context.Background())
	assert.True(t, ok)
	assert.Empty(t, reason)

	ok, _ = p.Probe(context.Background())
	assert.True(t, ok)
	assert.Equal(t, int32(1), client.heads.Load())
}

func TestProbeNegative(t *testing.T) {
	client := &fakeClient{bucket: "survey", key: "a.fits", headErr: fmt.Errorf("AccessDenied: forbidden")}
	p, err := New("s3://survey/a.fits", WithClient(client))
	require.NoError(t, err)

	ok, reason := p.Probe(context.Background())
	assert.False(t, ok)
	assert.Contains(t, reason, "AccessDenied")
}

func TestDownload(t *testing.T) {
	payload := []byte("fits payload from s3")
	client := &fakeClient{bucket: "survey", key: "images/a.fits", payload: payload}
	p, err := New("s3://survey/images/a.fits", WithClient(client))
	require.NoError(t, err)

	dir := t.TempDir()
	path, err := p.Download(context.Background(), access.DownloadOptions{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.fits"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, content)
}

func TestDownloadCacheReuse(t *testing.T) {
	payload := []byte("fits payload from s3")
	client := &fakeClient{bucket: "survey", key: "a.fits", payload: payload}
	p, err := New("s3://survey/a.fits", WithClient(client))
	require.NoError(t, err)

	dir := t.TempDir()
	local := filepath.Join(dir, "a.fits")
	require.NoError(t, os.WriteFile(local, payload, 0o640))

	path, err := p.Download(context.Background(), access.DownloadOptions{Dir: dir, Cache: true})
	require.NoError(t, err)
	assert.Equal(t, local, path)
	assert.Equal(t, int32(0), client.gets.Load())

	// stale size forces a fresh transfer
	require.NoError(t, os.WriteFile(local, []byte("stale"), 0o640))
	path, err = p.Download(context.Background(), access.DownloadOptions{Dir: dir, Cache: true})
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, content)
	assert.GreaterOrEqual(t, client.gets.Load(), int32(1))
}

func TestDownloadInvalidDir(t *testing.T) {
	client := &fakeClient{bucket: "survey", key: "a.fits", payload: []byte("data")}
	p, err := New("s3://survey/a.fits", WithClient(client))
	require.NoError(t, err)

	_, err = p.Download(context.Background(), access.DownloadOptions{Dir: "relative/dir"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidPath)
}

func TestSpec(t *testing.T) {
	spec := Spec()
	require.Equal(t, []string{"uri", "bucket_name", "key", "region"}, spec.Params)

	t.Run("uri form", func(t *testing.T) {
		p, err := spec.New(access.Params{"uri": "s3://survey/a.fits"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "s3://survey/a.fits", p.ID())
	})

	t.Run("pair form matches uri form", func(t *testing.T) {
		p, err := spec.New(access.Params{"bucket_name": "survey", "key": "a.fits"}, access.Metadata{"region": "us-east-1"})
		require.NoError(t, err)
		assert.Equal(t, "s3://survey/a.fits", p.ID())
	})

	t.Run("no parameters", func(t *testing.T) {
		_, err := spec.New(access.Params{}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidAccessSpec)
	})

	t.Run("incomplete pair", func(t *testing.T) {
		_, err := spec.New(access.Params{"bucket_name": "survey"}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidAccessSpec)
	})
}
