package cmd

import (
	"fmt"
	"log"
	"strconv"

	"github.com/spf13/cobra"
)

// newDisplayModeCmd creates a new command that shows or sets the display mode
func newDisplayModeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "display-mode [1|2]",
		Short: "Show or set the gallery display mode",
		Long:  `Without an argument print the current display mode; with one, store it. Only 1 and 2 are accepted.`,
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			_, svc := initService()
			defer svc.Close()

			ctx := cmd.Context()
			if len(args) == 0 {
				fmt.Println(svc.Settings.Get(ctx).DisplayMode)
				return
			}

			mode, err := strconv.Atoi(args[0])
			if err != nil {
				log.Fatalf("Invalid display mode %q", args[0])
			}
			if err := svc.Settings.Set(ctx, mode); err != nil {
				log.Fatalf("Failed to set display mode: %v", err)
			}
			fmt.Printf("Display mode set to %d\n", mode)
		},
	}
}
