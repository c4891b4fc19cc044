package main

import (
	"github.com/spf13/cobra"

	"github.com/kirillkom/field-gap-tracker/internal/config"
	"github.com/kirillkom/field-gap-tracker/internal/infrastructure/filtercatalog"
)

func filtersCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Print the effective filter catalog as YAML",
		Long:  "Prints the catalog loaded from --path, FILTER_CATALOG_PATH, or the built-in default. The output is a valid catalog file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = config.Load().FilterCatalogPath
			}
			catalog, err := filtercatalog.Load(path)
			if err != nil {
				return err
			}
			raw, err := filtercatalog.Marshal(catalog)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(raw)
			return err
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "filter catalog YAML file")
	return cmd
}
