package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skyarchive/voaccess/pkg/handler"
	"github.com/skyarchive/voaccess/pkg/table"
)

// NewInspectCmd creates the inspect command.
func NewInspectCmd() *cobra.Command {
	var urlColumn, jsonColumn string

	cmd := &cobra.Command{
		Use:   "inspect PRODUCT",
		Short: "Show the access points discovered for a product table",
		Long: "Run the access-point discovery for every row of a product table " +
			"document and list what was found, without probing or downloading",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], urlColumn, jsonColumn)
		},
	}

	cmd.Flags().StringVar(&urlColumn, "url-column", "", "column holding the direct access url")
	cmd.Flags().StringVar(&jsonColumn, "json-column", "", "column holding the inline cloud access JSON")

	return cmd
}

func runInspect(cmd *cobra.Command, productPath, urlColumn, jsonColumn string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	product, err := table.LoadDocument(productPath)
	if err != nil {
		return err
	}

	if jsonColumn == "" {
		jsonColumn = cfg.Settings.JSONColumn
	}

	h, err := handler.New(cmd.Context(), product, handler.Options{
		URLColumn:   urlColumn,
		JSONColumn:  jsonColumn,
		Metadata:    providerMetadata(cfg),
		HTTPTimeout: cfg.Settings.HTTPTimeout,
		UserAgent:   cfg.Settings.UserAgent,
	})
	if err != nil {
		return err
	}

	for row := 0; row < h.NumRows(); row++ {
		reg, err := h.Registry(row)
		if err != nil {
			return err
		}
		fmt.Printf("row %d:\n%s", row, reg.Summary())
	}
	return nil
}
