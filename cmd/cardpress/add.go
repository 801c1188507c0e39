// Add command imports a character definition into the library.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/swelldreams/cardpress/pkg/types"
)

var addCmd = &cobra.Command{
	Use:   "add <file.json>",
	Short: "Add a character from a JSON definition",
	Long: `Add reads a character definition from a JSON file (or stdin when the
argument is "-") and stores it in the library. A character without an id is
assigned one.

Example:
  cardpress add eve.json
  cat eve.json | cardpress add -`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read definition: %w", err)
	}

	var ch types.Character
	if err := json.Unmarshal(data, &ch); err != nil {
		return fmt.Errorf("parse definition: %w", err)
	}

	saved, err := library.Save(ch)
	if err != nil {
		return fmt.Errorf("save character: %w", err)
	}

	if flagJSON {
		return printJSON(saved)
	}
	fmt.Printf("Added %q (%s)\n", saved.Name, saved.CharacterID)
	return nil
}
