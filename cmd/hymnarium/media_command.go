package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sukalov/hymnarium/internal/hymn"
	"github.com/sukalov/hymnarium/internal/media"
)

func newMediaCommand(ctx *commandContext) *cobra.Command {
	var editionFlag string
	var probe bool

	cmd := &cobra.Command{
		Use:   "media <number>",
		Short: "Show the media object keys of a hymn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edition, err := hymn.ParseEdition(editionFlag)
			if err != nil {
				return err
			}
			number := hymn.NormalizeNumber(args[0])
			out := cmd.OutOrStdout()

			for _, kind := range []hymn.MediaKind{hymn.Audio, hymn.SheetMusic} {
				key, ok := media.Locate(number, edition, kind, 0)
				if !ok {
					fmt.Fprintf(out, "%s: none\n", kind)
					continue
				}
				fmt.Fprintf(out, "%s: %s\n", kind, key)
			}

			if !probe {
				return nil
			}
			mediaClient, err := ctx.mediaClient()
			if err != nil {
				return err
			}
			if err := mediaClient.Ready(); err != nil {
				return err
			}
			pages := media.SheetMusicPages(cmd.Context(), mediaClient, number, edition)
			fmt.Fprintf(out, "sheet music pages found: %d\n", len(pages))
			for _, key := range pages {
				fmt.Fprintf(out, "  %s\n", key)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&editionFlag, "edition", "e", "new", "Hymnal edition (new|old)")
	cmd.Flags().BoolVar(&probe, "probe", false, "Check which sheet music pages exist in the bucket")
	return cmd
}
