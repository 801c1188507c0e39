// List command prints all characters in the library.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all characters",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	all, err := library.List()
	if err != nil {
		return fmt.Errorf("list characters: %w", err)
	}

	if flagJSON {
		return printJSON(all)
	}

	if len(all) == 0 {
		fmt.Println("No characters in library")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTORIES\tLORE")
	for _, ch := range all {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", ch.CharacterID, ch.Name, len(ch.Stories), len(ch.Reminders))
	}
	return w.Flush()
}
