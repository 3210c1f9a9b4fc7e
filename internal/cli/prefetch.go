package cli

import (
	"net/url"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skyarchive/voaccess/pkg/download"
	"github.com/skyarchive/voaccess/pkg/errors"
	"github.com/skyarchive/voaccess/pkg/handler"
	"github.com/skyarchive/voaccess/pkg/table"
)

// NewPrefetchCmd creates the prefetch command. It skips access-point
// discovery and pulls every row's direct url through the batch downloader.
func NewPrefetchCmd() *cobra.Command {
	var (
		dest      string
		urlColumn string
		workers   int
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "prefetch PRODUCT",
		Short: "Bulk-download the direct urls of a product table",
		Long: "Download every row of a product table document from its direct " +
			"on-prem url in parallel, without probing or cloud mirror resolution",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrefetch(cmd, args[0], dest, urlColumn, workers, noCache)
		},
	}

	cmd.Flags().StringVarP(&dest, "dest", "d", "", "destination directory (default: the configured download dir)")
	cmd.Flags().StringVar(&urlColumn, "url-column", "", "column holding the direct access url")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel downloads (default: cpu based)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "ignore previously downloaded files")

	return cmd
}

func runPrefetch(cmd *cobra.Command, productPath, dest, urlColumn string, workers int, noCache bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	product, err := table.LoadDocument(productPath)
	if err != nil {
		return err
	}
	column, err := handler.ResolveURLColumn(product, urlColumn)
	if err != nil {
		return err
	}

	items := make([]download.Item, 0, product.NumRows())
	for row := 0; row < product.NumRows(); row++ {
		raw, ok := product.Value(row, column)
		if !ok {
			return errors.Wrapf(errors.ErrInvalidAccessSpec, "row %d has no value in url column %q", row, column)
		}
		u, err := url.Parse(raw)
		if err != nil {
			return errors.Wrapf(errors.ErrInvalidAccessSpec, "row %d: %v", row, err)
		}
		items = append(items, download.Item{ID: raw, URL: u})
	}

	if dest == "" {
		dest = cfg.Settings.DownloadDir
	}
	if !filepath.IsAbs(dest) {
		if dest, err = filepath.Abs(dest); err != nil {
			return err
		}
	}

	fetcher := download.NewManager(cfg.Settings.HTTPTimeout, cfg.Settings.UserAgent)
	paths, err := fetcher.FetchAll(cmd.Context(), items, download.Options{
		Dir:         dest,
		Cache:       !noCache,
		Concurrency: workers,
	})
	if err != nil {
		return err
	}

	results := make([]handler.Result, 0, len(items))
	for row, item := range items {
		results = append(results, handler.Result{Row: row, Path: paths[item.ID]})
	}
	return printResults(cfg, results)
}
