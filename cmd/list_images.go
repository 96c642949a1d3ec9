package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"media-gallery/pkg/services"
)

// newListImagesCmd creates a new command for showing the entries of a category
func newListImagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-images [category]",
		Short: "Show the entries of a category",
		Long:  `Show every image and link card stored in a category, in catalog order.`,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			_, svc := initService()
			defer svc.Close()
			listImages(cmd.Context(), args[0])
		},
	}
}

// listImages displays the entries of one category
func listImages(ctx context.Context, category string) {
	entries := services.GetEntries(ctx, category)

	fmt.Printf("Category: %s\n", category)
	fmt.Printf("Entries: %d\n", len(entries))
	fmt.Println("================")

	for i, entry := range entries {
		if entry.IsLink() {
			fmt.Printf("%d. %s\n", i+1, entry.Link.Title)
			fmt.Printf("   URL: %s\n", entry.Link.URL)
			fmt.Printf("   Thumbnail: %s\n", entry.Link.Thumbnail)
		} else {
			fmt.Printf("%d. %s\n", i+1, entry.Path)
		}
	}
}
