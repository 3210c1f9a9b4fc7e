package discover

import (
	"context"
	"strings"

	"github.com/skyarchive/voaccess/internal/logger"
	"github.com/skyarchive/voaccess/pkg/access"
	"github.com/skyarchive/voaccess/pkg/datalink"
	"github.com/skyarchive/voaccess/pkg/table"
)

// FromDatalink resolves access locations through the product's "cloudlinks"
// service. For every declared source option belonging to the provider it runs
// one secondary query and joins the returned rows against the product on the
// service's declared ref column. A product without the service, without a
// source parameter or without a usable ref column yields empty records; a
// failing or malformed query fails that option only.
func FromDatalink(ctx context.Context, product table.Product, provider string, cat access.Catalog, querier datalink.Querier) (Records, error) {
	records := emptyRecords(product.NumRows())
	if querier == nil {
		return records, nil
	}

	svc, ok := product.Service(datalink.ServiceID)
	if !ok {
		return records, nil
	}
	sourceParam, ok := svc.Param(datalink.SourceParam)
	if !ok {
		return records, nil
	}
	refColumn, ok := svc.RefColumn()
	if !ok || !hasField(product, refColumn) {
		logger.Warn("datalink service has no usable ref column", logger.Fields{"service": svc.ID})
		return records, nil
	}

	primary, err := cat.PrimaryParam(provider)
	if err != nil {
		return nil, err
	}

	for _, option := range sourceParam.Options {
		if option.Value == datalink.MainServerAlias {
			continue
		}
		// the provider tag is everything before the first colon; a bare
		// value is all tag
		optProvider, _, _ := strings.Cut(option.Value, ":")
		if optProvider != provider {
			continue
		}

		rows, err := querier.Query(ctx, svc, option.Value)
		if err != nil {
			logger.Warn("datalink query failed", logger.Fields{
				"source": option.Value, "error": err.Error(),
			})
			continue
		}

		byID := make(map[string][]string, len(rows))
		for _, r := range rows {
			if r.AccessURL == "" {
				continue
			}
			byID[r.ID] = append(byID[r.ID], r.AccessURL)
		}

		for row := 0; row < product.NumRows(); row++ {
			id, ok := product.Value(row, refColumn)
			if !ok {
				continue
			}
			for _, url := range byID[id] {
				records[row] = append(records[row], access.Params{primary: url})
			}
		}
	}
	return records, nil
}
