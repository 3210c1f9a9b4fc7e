package table

import (
	"encoding/json"
	"io"
	"os"

	"github.com/hashicorp/go-version"
	"github.com/skyarchive/voaccess/pkg/datalink"
	"github.com/skyarchive/voaccess/pkg/errors"
)

const (
	// CurrentFormatVersion is the format version written by this release.
	CurrentFormatVersion = "1.0"

	// supportedFormatConstraint is the range of document versions this
	// release can read.
	supportedFormatConstraint = ">= 1.0, < 2.0"
)

// Document is the serialized form of an in-memory product. Row values are
// strings; null values are represented by omitting the key.
type Document struct {
	FormatVersion string              `json:"format_version"`
	Fields        []Field             `json:"fields"`
	Rows          []map[string]string `json:"rows"`
	Services      []datalink.Service  `json:"services,omitempty"`
}

// ParseDocument parses a product document from JSON data.
func ParseDocument(data []byte) (*Mem, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrProductParse, err.Error())
	}
	if doc.FormatVersion == "" {
		return nil, errors.Wrap(errors.ErrProductParse, "missing format_version")
	}

	v, err := version.NewVersion(doc.FormatVersion)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrProductVersion, "%q", doc.FormatVersion)
	}
	constraint, err := version.NewConstraint(supportedFormatConstraint)
	if err != nil {
		return nil, errors.Wrap(err, "invalid format constraint")
	}
	if !constraint.Check(v) {
		return nil, errors.Wrapf(errors.ErrProductVersion, "%s (supported: %s)", doc.FormatVersion, supportedFormatConstraint)
	}

	return NewMem(doc.Fields, doc.Rows, doc.Services...), nil
}

// ParseDocumentFromReader parses a product document from an io.Reader.
func ParseDocumentFromReader(reader io.Reader) (*Mem, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read product document")
	}
	return ParseDocument(data)
}

// LoadDocument reads and parses a product document from a file.
func LoadDocument(path string) (*Mem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open product document %s", path)
	}
	defer func() { _ = f.Close() }()
	return ParseDocumentFromReader(f)
}
