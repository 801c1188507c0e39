// Delete command removes a character from the library.
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/swelldreams/cardpress/pkg/types"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a character by ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	if err := library.Delete(args[0]); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return fmt.Errorf("character %q not found", args[0])
		}
		return fmt.Errorf("delete character: %w", err)
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}
