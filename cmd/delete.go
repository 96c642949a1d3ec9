package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

// newDeleteImageCmd creates a new command that removes one entry
func newDeleteImageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-image [category] [path]",
		Short: "Remove an image or link card from a category",
		Long:  `Remove the entry with the given path from a category and delete its file.`,
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			_, svc := initService()
			defer svc.Close()

			if err := svc.DeleteImage(cmd.Context(), args[0], args[1]); err != nil {
				log.Fatalf("Failed to delete image: %v", err)
			}
			fmt.Printf("Deleted %s\n", args[1])
		},
	}
}

// newDeleteCategoryCmd creates a new command that removes a whole category
func newDeleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-category [category]",
		Short: "Remove a category and all of its files",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			_, svc := initService()
			defer svc.Close()

			if err := svc.DeleteCategory(cmd.Context(), args[0]); err != nil {
				log.Fatalf("Failed to delete category: %v", err)
			}
			fmt.Printf("Deleted category %s\n", args[0])
		},
	}
}
