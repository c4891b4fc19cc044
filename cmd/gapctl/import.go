package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kirillkom/field-gap-tracker/internal/infrastructure/catalog/csvsource"
)

func importCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the imported field catalog in Postgres with a CSV file",
		Long: "Parses the catalog CSV and replaces every imported field row in one transaction. " +
			"Fields added by hand are kept. Without --file the configured catalog key is read from storage.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			var r io.ReadCloser
			if file != "" {
				r, err = os.Open(file)
			} else {
				r, err = app.Storage.Open(cmd.Context(), app.Config.CatalogCSVKey)
			}
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer r.Close()

			result, err := csvsource.Parse(r)
			if err != nil {
				return err
			}
			inserted, err := app.FieldRepo.ReplaceImported(cmd.Context(), result.Records)
			if err != nil {
				return fmt.Errorf("import catalog: %w", err)
			}
			app.Logger.Info("field_catalog_imported",
				"parsed", len(result.Records),
				"inserted", inserted,
				"dropped", result.Dropped,
				"duplicates", result.Duplicates,
			)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d fields (%d dropped, %d duplicates)\n",
				inserted, result.Dropped, result.Duplicates)
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to a local catalog CSV")
	return cmd
}
