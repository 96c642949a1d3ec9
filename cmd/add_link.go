package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

// newAddLinkCmd creates a new command that ingests a link card
func newAddLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-link [category] [url]",
		Short: "Add a link card to a category",
		Long:  `Fetch the Open-Graph preview image of a page, store it in the category and add a link card for it.`,
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			_, svc := initService()
			defer svc.Close()

			path, err := svc.IngestLink(cmd.Context(), args[0], args[1])
			if err != nil {
				log.Fatalf("Failed to add link: %v", err)
			}
			fmt.Printf("Added %s\n", path)
		},
	}
}
