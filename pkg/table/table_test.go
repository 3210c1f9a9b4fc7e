package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyarchive/voaccess/pkg/datalink"
	"github.com/skyarchive/voaccess/pkg/errors"
)

func newTestProduct() *Mem {
	fields := []Field{
		{Name: "obs_id"},
		{Name: "access_url", UCD: "VOX:Image_AccessReference"},
		{Name: "cloud_access"},
	}
	rows := []map[string]string{
		{"obs_id": "o1", "access_url": "http://example.org/a.fits", "cloud_access": `{"aws": {"bucket_name": "b", "key": "k"}}`},
		{"obs_id": "o2", "access_url": "http://example.org/b.fits"},
	}
	svc := datalink.Service{
		ID: datalink.ServiceID,
		InputParams: []datalink.Param{
			{Name: "id", Ref: "obs_id"},
			{Name: datalink.SourceParam, Options: []datalink.Option{{Description: "AWS S3", Value: "aws:open-data"}}},
		},
	}
	return NewMem(fields, rows, svc)
}

func TestMemAccessors(t *testing.T) {
	p := newTestProduct()

	assert.Equal(t, []string{"obs_id", "access_url", "cloud_access"}, p.Fieldnames())
	assert.Equal(t, 2, p.NumRows())

	v, ok := p.Value(0, "access_url")
	require.True(t, ok)
	assert.Equal(t, "http://example.org/a.fits", v)

	// null value: key absent in row map
	_, ok = p.Value(1, "cloud_access")
	assert.False(t, ok)

	// unknown field and out-of-range row
	_, ok = p.Value(0, "nope")
	assert.False(t, ok)
	_, ok = p.Value(5, "obs_id")
	assert.False(t, ok)
}

func TestFieldByUCD(t *testing.T) {
	p := newTestProduct()

	name, ok := p.FieldByUCD("VOX:Image_AccessReference")
	require.True(t, ok)
	assert.Equal(t, "access_url", name)

	_, ok = p.FieldByUCD("meta.ref.aws")
	assert.False(t, ok)
}

func TestServiceLookup(t *testing.T) {
	p := newTestProduct()

	svc, ok := p.Service(datalink.ServiceID)
	require.True(t, ok)

	param, ok := svc.Param(datalink.SourceParam)
	require.True(t, ok)
	assert.Len(t, param.Options, 1)

	ref, ok := svc.RefColumn()
	require.True(t, ok)
	assert.Equal(t, "obs_id", ref)

	_, ok = p.Service("other")
	assert.False(t, ok)
}

func TestParseDocument(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		expectError error
	}{
		{
			name: "valid document",
			data: `{"format_version": "1.0", "fields": [{"name": "access_url"}], "rows": [{"access_url": "http://x/y"}]}`,
		},
		{
			name:        "missing format version",
			data:        `{"fields": [], "rows": []}`,
			expectError: errors.ErrProductParse,
		},
		{
			name:        "unsupported format version",
			data:        `{"format_version": "2.1", "fields": [], "rows": []}`,
			expectError: errors.ErrProductVersion,
		},
		{
			name:        "invalid json",
			data:        `{`,
			expectError: errors.ErrProductParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseDocument([]byte(tt.data))
			if tt.expectError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, p.NumRows())
		})
	}
}
