package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"spirare/internal/content"
)

func newSongsCommand(ctx *commandContext) *cobra.Command {
	songsCmd := &cobra.Command{
		Use:     "songs",
		Aliases: []string{"song"},
		Short:   "Inspect background tracks",
	}
	songsCmd.AddCommand(newSongsListCommand(ctx))
	return songsCmd
}

func newSongsListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored songs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(c context.Context, store content.Store) error {
				songs, err := store.ListSongs(c)
				if err != nil {
					return err
				}
				if songs == nil {
					songs = []content.Song{}
				}
				if asJSON {
					return writeJSON(cmd, songs)
				}
				out := cmd.OutOrStdout()
				if len(songs) == 0 {
					fmt.Fprintln(out, "No songs stored")
					return nil
				}
				rows := make([][]string, 0, len(songs))
				for _, song := range songs {
					stage := "-"
					if song.Stage != "" {
						stage = song.Stage.Label()
					}
					rows = append(rows, []string{
						song.Title,
						song.Artist,
						stage,
						song.Src,
						strconv.Itoa(song.FadeInMs),
						strconv.Itoa(song.FadeOutMs),
						strconv.FormatFloat(song.Volume, 'f', 2, 64),
					})
				}
				fmt.Fprint(out, renderTable(
					[]string{"Title", "Artist", "Stage", "Source", "Fade in ms", "Fade out ms", "Volume"},
					rows,
					tableOptions{aligns: []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight}},
				))
				fmt.Fprintln(out)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print songs as JSON")
	return cmd
}
