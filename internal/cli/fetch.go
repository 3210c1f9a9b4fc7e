package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/skyarchive/voaccess/internal/logger"
	"github.com/skyarchive/voaccess/pkg/access"
	"github.com/skyarchive/voaccess/pkg/archive"
	"github.com/skyarchive/voaccess/pkg/config"
	"github.com/skyarchive/voaccess/pkg/handler"
	"github.com/skyarchive/voaccess/pkg/hook"
	"github.com/skyarchive/voaccess/pkg/table"
)

type fetchFlags struct {
	source     string
	dest       string
	urlColumn  string
	jsonColumn string
	dryRun     bool
	noFallback bool
	noCache    bool
	extract    bool
	hooksDir   string
	timeout    time.Duration
}

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	flags := &fetchFlags{}

	cmd := &cobra.Command{
		Use:   "fetch PRODUCT",
		Short: "Download the data behind a product table",
		Long: "Resolve every row of a product table document to an access point " +
			"and download the data, falling back to the on-prem archive when the " +
			"chosen source is unreachable",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.source, "source", "s", access.ProviderAWS, "source provider to download from")
	cmd.Flags().StringVarP(&flags.dest, "dest", "d", "", "destination directory (default: the configured download dir)")
	cmd.Flags().StringVar(&flags.urlColumn, "url-column", "", "column holding the direct access url")
	cmd.Flags().StringVar(&flags.jsonColumn, "json-column", "", "column holding the inline cloud access JSON")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "resolve access points without downloading")
	cmd.Flags().BoolVar(&flags.noFallback, "no-fallback", false, "do not fall back to on-prem access")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "ignore previously downloaded files")
	cmd.Flags().BoolVarP(&flags.extract, "extract", "x", false, "unpack compressed or archived products after download")
	cmd.Flags().StringVar(&flags.hooksDir, "hooks-dir", "", "directory with lifecycle hook scripts")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "per-row download timeout")

	return cmd
}

func runFetch(cmd *cobra.Command, productPath string, flags *fetchFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	product, err := table.LoadDocument(productPath)
	if err != nil {
		return err
	}

	jsonColumn := flags.jsonColumn
	if jsonColumn == "" {
		jsonColumn = cfg.Settings.JSONColumn
	}

	h, err := handler.New(cmd.Context(), product, handler.Options{
		URLColumn:   flags.urlColumn,
		JSONColumn:  jsonColumn,
		Metadata:    providerMetadata(cfg),
		HTTPTimeout: cfg.Settings.HTTPTimeout,
		UserAgent:   cfg.Settings.UserAgent,
	})
	if err != nil {
		return err
	}

	hooks := hook.NewManager()
	if flags.hooksDir != "" {
		if err := hooks.LoadFromDir(flags.hooksDir); err != nil {
			return err
		}
	}

	dest := flags.dest
	if dest == "" {
		dest = cfg.Settings.DownloadDir
	}
	if !filepath.IsAbs(dest) {
		if dest, err = filepath.Abs(dest); err != nil {
			return err
		}
	}

	if err := hooks.Execute(hook.PreDownload, hook.Context{Source: flags.source}); err != nil {
		return err
	}

	results, err := h.Download(cmd.Context(), flags.source, handler.DownloadOptions{
		Dir:        dest,
		NoFallback: flags.noFallback,
		DryRun:     flags.dryRun,
		Cache:      !flags.noCache,
		Timeout:    flags.timeout,
	})
	if err != nil {
		_ = hooks.Execute(hook.DownloadFailed, hook.Context{Source: flags.source, Vars: map[string]interface{}{
			"error": err.Error(),
		}})
		return err
	}

	for i := range results {
		res := &results[i]
		if res.Err != nil {
			_ = hooks.Execute(hook.DownloadFailed, hook.Context{
				Source: flags.source, Row: res.Row,
				Vars: map[string]interface{}{"error": res.Err.Error()},
			})
			continue
		}
		if flags.extract && !flags.dryRun {
			unpacked, err := archive.NewManager().Unpack(cmd.Context(), res.Path)
			if err != nil {
				logger.Warn("could not unpack product", logger.Fields{"path": res.Path, "error": err.Error()})
			} else {
				res.Path = unpacked
			}
		}
		_ = hooks.Execute(hook.PostDownload, hook.Context{
			Source: flags.source, Row: res.Row, LocalPath: res.Path,
		})
	}

	return printResults(cfg, results)
}

func printResults(cfg *config.Config, results []handler.Result) error {
	if cfg.Settings.OutputFormat == "json" {
		type jsonResult struct {
			Row   int    `json:"row"`
			Path  string `json:"path,omitempty"`
			Error string `json:"error,omitempty"`
		}
		out := make([]jsonResult, 0, len(results))
		for _, res := range results {
			jr := jsonResult{Row: res.Row, Path: res.Path}
			if res.Err != nil {
				jr.Error = res.Err.Error()
			}
			out = append(out, jr)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ROW\tRESULT")
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			_, _ = fmt.Fprintf(tw, "%d\tfailed: %v\n", res.Row, res.Err)
			continue
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\n", res.Row, res.Path)
	}
	_ = tw.Flush()

	if failed > 0 {
		fmt.Printf("\n%d of %d rows could not be served\n", failed, len(results))
	}
	return nil
}
