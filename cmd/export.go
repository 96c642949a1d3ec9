package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"media-gallery/pkg/models"
	"media-gallery/pkg/services"
)

// newExportCmd creates a new command for exporting the catalog
func newExportCmd() *cobra.Command {
	var sorted bool

	cmd := &cobra.Command{
		Use:   "export [format]",
		Short: "Export the catalog",
		Long:  `Export the catalog together with the display mode in the specified format. Currently supported formats: json.`,
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			_, svc := initService()
			defer svc.Close()

			format := "json"
			if len(args) > 0 {
				format = args[0]
			}
			exportData(cmd.Context(), svc, format, sorted)
		},
	}

	cmd.Flags().BoolVar(&sorted, "sort", false, "Order categories by name, numbers compared by value")
	return cmd
}

// exportData exports the catalog in the specified format
func exportData(ctx context.Context, svc *services.Service, format string, sorted bool) {
	if format != "json" {
		fmt.Printf("Unsupported export format: %s\n", format)
		fmt.Println("Supported formats: json")
		os.Exit(1)
	}

	doc, err := svc.Catalog.Snapshot(ctx)
	if err != nil {
		log.Fatalf("Failed to read catalog: %v", err)
	}
	if sorted {
		doc = sortCatalog(doc)
	}

	data, err := json.MarshalIndent(struct {
		DisplayMode int             `json:"displayMode"`
		Catalog     *models.Catalog `json:"catalog"`
	}{
		DisplayMode: svc.Settings.Get(ctx).DisplayMode,
		Catalog:     doc,
	}, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(data))
}

// sortCatalog returns doc with its categories in natural name order
func sortCatalog(doc *models.Catalog) *models.Catalog {
	names := doc.Names()
	services.SortNatural(names)

	sorted := &models.Catalog{Categories: make([]models.Category, 0, len(names))}
	for _, name := range names {
		entries, _ := doc.Entries(name)
		sorted.Categories = append(sorted.Categories, models.Category{Name: name, Entries: entries})
	}
	return sorted
}
