// Get command retrieves a character by ID.
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/swelldreams/cardpress/pkg/types"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a character by ID",
	Long: `Get retrieves a character from the library by its ID and prints it as JSON.

Example:
  cardpress get 0195b7a1-5e2c-7c3a-9f40-8d2f6f14c9aa`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	ch, err := library.Get(args[0])
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return fmt.Errorf("character %q not found", args[0])
		}
		return fmt.Errorf("get character: %w", err)
	}
	return printJSON(ch)
}
