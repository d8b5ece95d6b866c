package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/shipment-cli/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the port reference catalog",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the catalog and report how many ports were accepted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		fmt.Printf("catalog OK: %d ports loaded from %s\n", cat.Len(), cfg.Catalog.Path)
		return nil
	},
}

var catalogLookupCmd = &cobra.Command{
	Use:   "lookup <code-or-name>",
	Short: "Resolve a port code, name, or alias to its canonical entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}

		entry, ok := cat.Lookup(args[0])
		if !ok {
			return eris.Errorf("no port matches %q", args[0])
		}
		fmt.Printf("%s\t%s\n", entry.Code, entry.Name)
		return nil
	},
}

func loadCatalog() (*catalog.Catalog, error) {
	cat, err := catalog.Load(cfg.Catalog.Path, catalog.Options{
		FuzzyThreshold: cfg.Catalog.FuzzyThreshold,
		PreferredNames: cfg.Catalog.PreferredNames,
	})
	if err != nil {
		return nil, eris.Wrap(err, "load port catalog")
	}
	return cat, nil
}

func init() {
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogLookupCmd)
	rootCmd.AddCommand(catalogCmd)
}
