// Package discover extracts per-row access-point parameter records from a
// tabular data product. Three independent extractors feed the handler: an
// inline JSON column, semantic (UCD) column tags, and a secondary datalink
// service. Each extractor tolerates a missing data source by returning empty
// records; only violations of the input contract raise errors.
package discover

import (
	"github.com/skyarchive/voaccess/pkg/access"
)

// DefaultJSONColumn is the conventional name of the inline JSON access column.
const DefaultJSONColumn = "cloud_access"

// ucdRefPrefix prefixes the semantic tag marking a column as a provider
// reference, e.g. "meta.ref.aws".
const ucdRefPrefix = "meta.ref."

// Records holds, for each product row, the parameter records one extractor
// found for a single provider. len(Records) always equals the row count.
type Records [][]access.Params

func emptyRecords(rows int) Records {
	return make(Records, rows)
}
