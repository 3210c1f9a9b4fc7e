package discover

import (
	"strings"

	"github.com/skyarchive/voaccess/pkg/access"
	"github.com/skyarchive/voaccess/pkg/table"
)

// FromUCD reads the column tagged with the provider's reference UCD
// ("meta.ref.<provider>"). Each non-null cell emits one record binding the
// value to the provider's primary parameter. Products without such a column
// yield empty records.
func FromUCD(product table.Product, provider string, cat access.Catalog) (Records, error) {
	records := emptyRecords(product.NumRows())

	column, ok := product.FieldByUCD(ucdRefPrefix + provider)
	if !ok {
		return records, nil
	}
	primary, err := cat.PrimaryParam(provider)
	if err != nil {
		return nil, err
	}

	for row := 0; row < product.NumRows(); row++ {
		value, ok := product.Value(row, column)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		records[row] = []access.Params{{primary: value}}
	}
	return records, nil
}
