package cmd

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/rohmanhakim/product-aggregator/internal/product"
	"github.com/spf13/cobra"
)

type productsOutput struct {
	Source   string           `json:"source,omitempty"`
	Query    string           `json:"query,omitempty"`
	Total    int              `json:"total"`
	Products []product.Record `json:"products"`
}

var productsCmd = &cobra.Command{
	Use:   "products [source]",
	Short: "Print the featured products of every catalog provider, or of one source.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}
		app, err := NewApp(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer app.Close()

		out := productsOutput{}
		var records []product.Record
		if len(args) == 1 {
			out.Source = strings.ToLower(strings.TrimSpace(args[0]))
			records, err = app.Catalog.BySource(cmd.Context(), out.Source)
		} else {
			records, err = app.Catalog.AllProducts(cmd.Context())
		}
		if err != nil {
			return err
		}
		return writeProducts(cmd.OutOrStdout(), out, records)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search every search provider and enabled store for a query.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}
		app, err := NewApp(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer app.Close()

		query := strings.TrimSpace(strings.Join(args, " "))
		records, err := app.Catalog.Search(cmd.Context(), query)
		if err != nil {
			return err
		}
		return writeProducts(cmd.OutOrStdout(), productsOutput{Query: query}, records)
	},
}

func writeProducts(w io.Writer, out productsOutput, records []product.Record) error {
	if records == nil {
		records = []product.Record{}
	}
	out.Total = len(records)
	out.Products = records

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
