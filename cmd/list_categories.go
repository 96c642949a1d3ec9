package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"media-gallery/pkg/services"
)

// newListCategoriesCmd creates a new command for listing categories
func newListCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-categories",
		Short: "List all categories",
		Long:  `List all categories in catalog order with the number of entries in each.`,
		Run: func(cmd *cobra.Command, args []string) {
			_, svc := initService()
			defer svc.Close()
			listCategories(cmd.Context())
		},
	}
}

// listCategories displays all categories and their entry counts
func listCategories(ctx context.Context) {
	categories := services.GetCategories(ctx)

	fmt.Println("Categories:")
	fmt.Println("================")

	for _, name := range categories {
		fmt.Printf("%s\n", name)
		fmt.Printf("  Entries: %d\n", len(services.GetEntries(ctx, name)))
		fmt.Println()
	}

	fmt.Printf("Total: %d categories\n", len(categories))
}
