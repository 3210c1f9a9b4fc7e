package discover

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/skyarchive/voaccess/pkg/access"
	"github.com/skyarchive/voaccess/pkg/errors"
	"github.com/skyarchive/voaccess/pkg/table"
)

// FromJSONColumn reads the inline access column: each cell holds a JSON object
// keyed by provider name, whose value is one parameter record or an array of
// them. Rows with a missing column, a null cell or no entry for the provider
// yield empty records. A cell that is not valid JSON of that shape is an
// input-contract violation and fails the extraction.
func FromJSONColumn(product table.Product, column, provider string) (Records, error) {
	if column == "" {
		column = DefaultJSONColumn
	}
	records := emptyRecords(product.NumRows())

	if !hasField(product, column) {
		return records, nil
	}

	for row := 0; row < product.NumRows(); row++ {
		cell, ok := product.Value(row, column)
		if !ok || strings.TrimSpace(cell) == "" {
			continue
		}

		var byProvider map[string]json.RawMessage
		if err := json.Unmarshal([]byte(cell), &byProvider); err != nil {
			return nil, errors.Wrapf(errors.ErrMalformedAccess, "row %d column %q: %v", row, column, err)
		}
		raw, ok := byProvider[provider]
		if !ok {
			continue
		}

		params, err := decodeParamRecords(raw)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrMalformedAccess, "row %d column %q provider %q: %v", row, column, provider, err)
		}
		records[row] = params
	}
	return records, nil
}

// decodeParamRecords accepts a single parameter object or an array of them.
func decodeParamRecords(raw json.RawMessage) ([]access.Params, error) {
	var list []map[string]interface{}
	if err := json.Unmarshal(raw, &list); err != nil {
		var single map[string]interface{}
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("expected an object or an array of objects")
		}
		list = []map[string]interface{}{single}
	}

	records := make([]access.Params, 0, len(list))
	for _, entry := range list {
		params := make(access.Params, len(entry))
		for key, value := range entry {
			switch v := value.(type) {
			case string:
				params[key] = v
			case float64, bool:
				params[key] = fmt.Sprintf("%v", v)
			case nil:
				// null parameter values carry no information
			default:
				return nil, fmt.Errorf("parameter %q is not a scalar", key)
			}
		}
		records = append(records, params)
	}
	return records, nil
}

func hasField(product table.Product, name string) bool {
	for _, f := range product.Fieldnames() {
		if f == name {
			return true
		}
	}
	return false
}
