package cmd

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

// newSeedCmd creates a new command that rebuilds the catalog from the blob tree
func newSeedCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Rebuild the catalog from the gallery directory",
		Long: `Scan every category directory of the blob store and write a fresh catalog listing its
.jpg, .jpeg and .png files. The existing catalog is replaced, not merged, and link cards are lost.`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, svc := initService()
			defer svc.Close()

			ctx := cmd.Context()
			if dryRun {
				doc, err := svc.Seeder.Generate(ctx)
				if err != nil {
					log.Fatalf("Failed to scan gallery: %v", err)
				}
				data, err := json.MarshalIndent(doc, "", "  ")
				if err != nil {
					log.Fatalf("Error marshaling catalog: %v", err)
				}
				fmt.Println(string(data))
				return
			}

			doc, err := svc.Seeder.Seed(ctx, svc.Catalog)
			if err != nil {
				log.Fatalf("Failed to seed catalog: %v", err)
			}
			fmt.Printf("Wrote %d categories to %s\n", len(doc.Categories), cfg.CatalogPath)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the generated catalog instead of writing it")
	return cmd
}
