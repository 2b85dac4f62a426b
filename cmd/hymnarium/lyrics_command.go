package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sukalov/hymnarium/internal/hymn"
	"github.com/sukalov/hymnarium/internal/lyrics"
)

func newLyricsCommand() *cobra.Command {
	var editionFlag string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "lyrics <file|->",
		Short: "Segment raw hymn content into verses and choruses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edition, err := hymn.ParseEdition(editionFlag)
			if err != nil {
				return err
			}

			var raw []byte
			if args[0] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read content: %w", err)
			}

			units := lyrics.Segment(string(raw), edition)
			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(units)
			}
			for i, unit := range units {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "[%s]\n%s\n", unit.Badge(), unit.Text)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&editionFlag, "edition", "e", "new", "Hymnal edition (new|old)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print units as JSON")
	return cmd
}
