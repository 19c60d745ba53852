package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"spirare/internal/api"
	"spirare/internal/content"
	"spirare/internal/textutil"
)

func newThemesCommand(ctx *commandContext) *cobra.Command {
	themesCmd := &cobra.Command{
		Use:     "themes",
		Aliases: []string{"theme"},
		Short:   "Inspect and remove meditation themes",
	}

	themesCmd.AddCommand(newThemesListCommand(ctx))
	themesCmd.AddCommand(newThemesShowCommand(ctx))
	themesCmd.AddCommand(newThemesDeleteCommand(ctx))

	return themesCmd
}

func newThemesListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(c context.Context, store content.Store) error {
				themes, err := store.ListThemes(c)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, api.FromThemes(themes))
				}
				out := cmd.OutOrStdout()
				if len(themes) == 0 {
					fmt.Fprintln(out, "No themes stored")
					return nil
				}
				colorize := shouldColorize(out)
				rows := make([][]string, 0, len(themes))
				for _, theme := range themes {
					rows = append(rows, []string{
						theme.Category,
						theme.Title,
						activeLabel(theme.IsActive, colorize),
						strconv.Itoa(theme.OverrideCount()),
						api.FormatTime(theme.UpdatedAt),
					})
				}
				fmt.Fprint(out, renderTable(
					[]string{"Category", "Title", "Status", "Overrides", "Updated"},
					rows,
					tableOptions{aligns: []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}},
				))
				fmt.Fprintln(out)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print themes as JSON")
	return cmd
}

func newThemesShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <category>",
		Short: "Show a theme and its phrase overrides",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(c context.Context, store content.Store) error {
				theme, err := store.GetThemeByCategory(c, content.NormalizeCategory(args[0]))
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, theme)
				}
				out := cmd.OutOrStdout()
				fmt.Fprint(out, renderTheme(theme, shouldColorize(out)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the theme as JSON")
	return cmd
}

func renderTheme(theme content.Theme, colorize bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) [%s]\n", paint(theme.Title, ansiCyan, colorize), theme.Category, activeLabel(theme.IsActive, colorize))
	if theme.Description != "" {
		fmt.Fprintln(&b, theme.Description)
	}
	if theme.OverrideCount() == 0 {
		fmt.Fprintln(&b, "No overrides; every practice draws from the base pools")
		return b.String()
	}

	var rows [][]string
	for _, stage := range content.Stages() {
		for _, practice := range stage.Vocabulary() {
			for i, phrase := range theme.Override(stage, practice) {
				row := []string{"", "", phrase}
				if i == 0 {
					row[0] = stage.Label()
					row[1] = textutil.Label(practice)
				}
				rows = append(rows, row)
			}
		}
	}
	b.WriteString(renderTable(
		[]string{"Stage", "Practice", "Phrase"},
		rows,
		tableOptions{wrap: map[int]int{2: phraseColumnWidth}},
	))
	b.WriteString("\n")
	return b.String()
}

func newThemesDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <category>",
		Short: "Delete a theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(c context.Context, store content.Store) error {
				category := content.NormalizeCategory(args[0])
				if err := store.DeleteTheme(c, category); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted theme %s\n", category)
				return nil
			})
		},
	}
}
