package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"spirare/internal/content"
	"spirare/internal/daemonrun"
	"spirare/internal/seed"
)

func newDBCommand(ctx *commandContext) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Maintain the content store",
	}

	dbCmd.AddCommand(newDBSeedCommand(ctx))
	dbCmd.AddCommand(newDBBackupCommand(ctx))
	dbCmd.AddCommand(newDBDropCommand(ctx))
	dbCmd.AddCommand(newDBStatsCommand(ctx))

	return dbCmd
}

func newDBSeedCommand(ctx *commandContext) *cobra.Command {
	var file string
	var replace bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a seed document into the content store",
		Long: "Apply a YAML seed document. Without --file, content.seed_path is used, then\n" +
			"the embedded default. Existing themes and songs are updated in place.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				doc    seed.Document
				source string
				err    error
			)
			if strings.TrimSpace(file) != "" {
				source = file
				doc, err = seed.Load(file)
			} else {
				doc, source, err = daemonrun.LoadSeed(ctx.configValue())
			}
			if err != nil {
				return fmt.Errorf("load seed: %w", err)
			}
			return ctx.withStore(cmd, func(c context.Context, store content.Store) error {
				result, err := seed.Apply(c, store, doc, seed.Options{Replace: replace, Logger: ctx.cliLogger()})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Seeded from %s\n", source)
				fmt.Fprint(out, renderTable(
					[]string{"Structure", "Pools", "Themes", "Songs", "Metronome"},
					[][]string{{
						yesNo(result.Structure),
						strconv.Itoa(result.Pools),
						strconv.Itoa(result.Themes),
						strconv.Itoa(result.Songs),
						yesNo(result.Metronome),
					}},
					tableOptions{aligns: []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft}},
				))
				fmt.Fprintln(out)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Seed document to apply")
	cmd.Flags().BoolVar(&replace, "replace", false, "Drop all content before seeding")
	return cmd
}

func newDBBackupCommand(ctx *commandContext) *cobra.Command {
	var dir string
	var label string
	var toStdout bool

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Dump the content store into a seed document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(c context.Context, store content.Store) error {
				doc, err := seed.Backup(c, store, time.Now())
				if err != nil {
					return err
				}
				if toStdout {
					data, err := seed.Marshal(doc)
					if err != nil {
						return err
					}
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				target := strings.TrimSpace(dir)
				if target == "" {
					target = ctx.configValue().Paths.BackupDir
				}
				path, err := seed.WriteLabeledBackup(target, doc, label)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote backup to %s (%d themes, %d pools, %d songs)\n",
					path, len(doc.Themes), len(doc.Pools), len(doc.Songs))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Backup directory (defaults to paths.backup_dir)")
	cmd.Flags().StringVar(&label, "label", "", "Suffix appended to the backup file name")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Write the document to stdout instead of a file")
	return cmd
}

func newDBDropCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Remove all stored content",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errors.New("refusing to drop content without --yes")
			}
			return ctx.withStore(cmd, func(c context.Context, store content.Store) error {
				if err := store.Drop(c); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All content dropped")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm that all content should be removed")
	return cmd
}

func newDBStatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize stored content",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(c context.Context, store content.Store) error {
				stats, err := store.Stats(c)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, stats)
				}
				rows := [][]string{
					{"Structure", yesNo(stats.HasStructure)},
					{"Themes", fmt.Sprintf("%d (%d active)", stats.Themes, stats.ActiveThemes)},
					{"Pools", strconv.Itoa(stats.Pools)},
					{"Phrases", strconv.Itoa(stats.Phrases)},
					{"Songs", strconv.Itoa(stats.Songs)},
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Content", "Stored"}, rows, tableOptions{
					aligns: []columnAlignment{alignLeft, alignRight},
				}))
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print stats as JSON")
	return cmd
}
