package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"spirare/internal/composer"
	"spirare/internal/content"
	"spirare/internal/textutil"
)

func newComposeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "compose <category>",
		Short: "Compose a meditation session from the local content store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(c context.Context, store content.Store) error {
				session, err := composer.New(store, store, store, composer.WithLogger(ctx.cliLogger())).Compose(c, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, session)
				}
				out := cmd.OutOrStdout()
				fmt.Fprint(out, renderSession(session, shouldColorize(out)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the session as JSON")
	return cmd
}

func renderSession(session content.MeditationSession, colorize bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", paint(session.Title, ansiCyan, colorize), session.Category)
	if session.Description != "" {
		fmt.Fprintln(&b, session.Description)
	}

	rows := make([][]string, 0, session.PracticeCount())
	for _, stage := range session.Stages {
		for i, practice := range stage.Practices {
			stageLabel := ""
			if i == 0 {
				stageLabel = stage.Stage.Label()
			}
			rows = append(rows, []string{
				stageLabel,
				textutil.Label(practice.Practice),
				sourceLabel(practice.IsSpecific, colorize),
				practice.Text,
			})
		}
	}
	b.WriteString(renderTable(
		[]string{"Stage", "Practice", "Source", "Phrase"},
		rows,
		tableOptions{wrap: map[int]int{3: phraseColumnWidth}},
	))
	b.WriteString("\n")
	return b.String()
}
