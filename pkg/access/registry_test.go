package access_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/skyarchive/voaccess/pkg/access"
	"github.com/skyarchive/voaccess/pkg/access/mocks"
	"github.com/skyarchive/voaccess/pkg/errors"
)

type fakePoint struct {
	provider  string
	id        string
	reachable bool
	reason    string
}

func (f *fakePoint) Provider() string                        { return f.provider }
func (f *fakePoint) ID() string                              { return f.id }
func (f *fakePoint) Probe(context.Context) (bool, string)    { return f.reachable, f.reason }
func (f *fakePoint) Download(context.Context, access.DownloadOptions) (string, error) {
	return "/tmp/" + f.id, nil
}

func TestNewRegistrySeedsBase(t *testing.T) {
	base := &fakePoint{provider: access.ProviderPrem, id: "http://x/y.fits"}
	reg, err := access.NewRegistry(base)
	require.NoError(t, err)

	points, err := reg.List(access.ProviderPrem)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "http://x/y.fits", points[0].ID())

	preferred, ok := reg.Preferred(access.ProviderPrem)
	require.True(t, ok)
	assert.Same(t, base, preferred.(*fakePoint))
}

func TestNewRegistryRejectsNil(t *testing.T) {
	_, err := access.NewRegistry(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotAccessPoint)
}

func TestAddDeduplicates(t *testing.T) {
	reg, err := access.NewRegistry(&fakePoint{provider: access.ProviderPrem, id: "http://x"})
	require.NoError(t, err)

	// same identity added repeatedly, in different shapes
	dup := &fakePoint{provider: access.ProviderAWS, id: "s3://b/k"}
	require.NoError(t, reg.Add(dup))
	require.NoError(t, reg.Add(dup))
	require.NoError(t, reg.Add([]access.Point{
		&fakePoint{provider: access.ProviderAWS, id: "s3://b/k"},
		&fakePoint{provider: access.ProviderAWS, id: "s3://b/k2"},
	}))

	points, err := reg.List(access.ProviderAWS)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "s3://b/k", points[0].ID())
	assert.Equal(t, "s3://b/k2", points[1].ID())

	// first registered stays preferred
	preferred, ok := reg.Preferred(access.ProviderAWS)
	require.True(t, ok)
	assert.Same(t, dup, preferred.(*fakePoint))
}

func TestAddRejectsForeignValues(t *testing.T) {
	reg, err := access.NewRegistry(&fakePoint{provider: access.ProviderPrem, id: "http://x"})
	require.NoError(t, err)

	err = reg.Add("not a point")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotAccessPoint)

	err = reg.Add([]interface{}{&fakePoint{provider: access.ProviderAWS, id: "s3://b/k"}, 42})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotAccessPoint)
}

func TestListUnknownProvider(t *testing.T) {
	reg, err := access.NewRegistry(&fakePoint{provider: access.ProviderPrem, id: "http://x"})
	require.NoError(t, err)

	_, err = reg.List("gcs")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrProviderNotFound)
}

func TestSummary(t *testing.T) {
	reg, err := access.NewRegistry(&fakePoint{provider: access.ProviderPrem, id: "http://x/y.fits"})
	require.NoError(t, err)
	require.NoError(t, reg.Add(&fakePoint{provider: access.ProviderAWS, id: "s3://b/k"}))

	summary := reg.Summary()
	assert.Contains(t, summary, "|prem | http://x/y.fits")
	assert.Contains(t, summary, "|aws  | s3://b/k")
	assert.Equal(t, []string{"aws", "prem"}, reg.Providers())
}

func TestAddAcceptsGeneratedPoint(t *testing.T) {
	ctrl := gomock.NewController(t)

	base := mocks.NewMockPoint(ctrl)
	base.EXPECT().Provider().Return(access.ProviderPrem).AnyTimes()
	base.EXPECT().ID().Return("http://x/y.fits").AnyTimes()

	reg, err := access.NewRegistry(base)
	require.NoError(t, err)

	preferred, ok := reg.Preferred(access.ProviderPrem)
	require.True(t, ok)
	assert.Equal(t, "http://x/y.fits", preferred.ID())
}

func TestCatalog(t *testing.T) {
	cat := access.Catalog{
		access.ProviderPrem: {
			Params: []string{"url"},
			New: func(params access.Params, _ access.Metadata) (access.Point, error) {
				return &fakePoint{provider: access.ProviderPrem, id: params["url"]}, nil
			},
		},
	}

	assert.True(t, cat.Has(access.ProviderPrem))
	assert.False(t, cat.Has("gcs"))
	assert.Equal(t, []string{"prem"}, cat.Names())

	primary, err := cat.PrimaryParam(access.ProviderPrem)
	require.NoError(t, err)
	assert.Equal(t, "url", primary)

	_, err = cat.PrimaryParam("gcs")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnsupportedProvider)

	p, err := cat.NewPoint(access.ProviderPrem, access.Params{"url": "http://x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://x", p.ID())

	_, err = cat.NewPoint("gcs", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnsupportedProvider)
}
