package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newRecentCommand() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently opened archives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApp(cmd, "stderr")
			if err != nil {
				return err
			}
			defer application.Close()

			entries := application.Recent.Entries()
			out := cmd.OutOrStdout()
			if jsonOutput {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(entries)
			}
			if len(entries) == 0 {
				PrintEmptyState(out, "No recent archives")
				return nil
			}
			items := make([]string, 0, len(entries))
			for _, entry := range entries {
				items = append(items, fmt.Sprintf("%s  %s", entry.Name, entry.Path))
			}
			PrintNumberedList(out, items, 0)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}
