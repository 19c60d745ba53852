package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"spirare/internal/clock"
	"spirare/internal/composer"
	"spirare/internal/config"
	"spirare/internal/content"
	"spirare/internal/crossfade"
	"spirare/internal/logging"
	"spirare/internal/metronome"
	"spirare/internal/narration"
	"spirare/internal/playback"
	"spirare/internal/playerui"
)

type playOptions struct {
	category  string
	reference bool
	preview   bool
	bell      bool
	clipsDir  string
	trackSrc  string
}

// player is everything one terminal session needs.
type player struct {
	machine *playback.Machine
	relay   *playerui.BeatRelay
	clips   *playerui.ClipWriter
}

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var opts playOptions

	cmd := &cobra.Command{
		Use:   "play [category]",
		Short: "Play a guided meditation in the terminal",
		Long: "Compose a session for category from the local content store and walk it\n" +
			"in the terminal. With --reference the built-in walkthrough is played instead.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.category = args[0]
			}
			if opts.category == "" && !opts.reference {
				return fmt.Errorf("a category is required unless --reference is set")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := playLogger(cfg)
			if err != nil {
				return err
			}

			return ctx.withStore(cmd, func(c context.Context, store content.Store) error {
				p, err := buildPlayer(c, cfg, store, clock.System{}, logger, opts, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				runErr := playerui.Run(c, p.machine, p.relay)
				if p.clips != nil && p.clips.Saved() > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Saved %d narration clips to %s\n", p.clips.Saved(), opts.clipsDir)
				}
				return runErr
			})
		},
	}

	cmd.Flags().BoolVar(&opts.reference, "reference", false, "Play the built-in reference walkthrough")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "Use playback.preview_substep_seconds for every substep")
	cmd.Flags().BoolVar(&opts.bell, "bell", false, "Ring the terminal bell on every metronome tick")
	cmd.Flags().StringVar(&opts.clipsDir, "clips-dir", "", "Save synthesized narration clips into this directory")
	cmd.Flags().StringVar(&opts.trackSrc, "track", "", "Background track for stages without an associated song")
	return cmd
}

// playLogger writes to a log file so output never lands on the player's
// screen.
func playLogger(cfg *config.Config) (*slog.Logger, error) {
	if cfg.Paths.LogDir == "" {
		return logging.NewNop(), nil
	}
	path := filepath.Join(cfg.Paths.LogDir, "spirare-play.log")
	logger, err := logging.New(logging.Options{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{path},
	})
	if err != nil {
		return nil, fmt.Errorf("init play logger: %w", err)
	}
	return logger, nil
}

// buildPlayer assembles the script, narration, metronome and fader for one
// session. Nothing is started.
func buildPlayer(ctx context.Context, cfg *config.Config, store content.Store, sched clock.Scheduler, logger *slog.Logger, opts playOptions, bellOut io.Writer) (*player, error) {
	substep := cfg.SubstepDuration()
	if opts.preview {
		substep = cfg.PreviewSubstepDuration()
	}

	script, err := loadScript(ctx, store, logger, opts, substep)
	if err != nil {
		return nil, err
	}
	if src := strings.TrimSpace(opts.trackSrc); src != "" {
		fallback := fallbackTrack(cfg, src)
		for i := range script.Stages {
			if script.Stages[i].Track == nil {
				script.Stages[i].Track = fallback
			}
		}
	}

	settings, err := store.MetronomeSettings(ctx)
	if err != nil {
		logging.WarnWithContext(logger, "metronome settings unavailable; using defaults", "metronome_settings_failed",
			logging.Error(err),
		)
		settings = content.DefaultMetronomeSettings()
	}

	relay := &playerui.BeatRelay{}
	metroOpts := []metronome.Option{
		metronome.WithBounds(cfg.Metronome.MinPeriodMs, cfg.Metronome.MaxPeriodMs),
		metronome.WithSettings(settings),
		metronome.WithBeatObserver(relay.Observe),
		metronome.WithLogger(logger),
	}
	if opts.bell {
		metroOpts = append(metroOpts, metronome.WithSink(playerui.NewBell(bellOut)))
	}
	metro := metronome.New(sched, metroOpts...)

	synth, err := narration.New(ctx, cfg, logger)
	if err != nil {
		logging.WarnWithContext(logger, "narration provider unavailable; showing text only", "narration_init_failed",
			logging.Error(err),
		)
		synth = narration.Disabled{}
	}
	p := &player{relay: relay}
	var voice playback.VoicePlayer
	if opts.clipsDir != "" {
		if err := os.MkdirAll(opts.clipsDir, 0o755); err != nil {
			return nil, fmt.Errorf("create clips directory: %w", err)
		}
		p.clips = playerui.NewClipWriter(opts.clipsDir)
		voice = p.clips
	}

	machine, err := playback.NewMachine(script, sched,
		playback.WithSpeaker(playback.NewNarrator(synth, voice, logger)),
		playback.WithMetronome(metro),
		playback.WithFader(crossfade.NewFader(sched, playerui.SilentTracks{}, logger)),
		playback.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	p.machine = machine
	return p, nil
}

func loadScript(ctx context.Context, store content.Store, logger *slog.Logger, opts playOptions, substep time.Duration) (playback.Script, error) {
	if opts.reference {
		return playback.ReferenceScript(substep), nil
	}
	session, err := composer.New(store, store, store, composer.WithLogger(logger)).Compose(ctx, opts.category)
	if err != nil {
		return playback.Script{}, err
	}
	songs, err := store.ListSongs(ctx)
	if err != nil {
		logging.WarnWithContext(logger, "songs unavailable; playing without background tracks", "songs_list_failed",
			logging.Error(err),
		)
		songs = nil
	}
	return playback.FromSession(session, playback.TracksFromSongs(songs), substep), nil
}

func fallbackTrack(cfg *config.Config, src string) *crossfade.Track {
	return &crossfade.Track{
		Src:     src,
		Title:   strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
		FadeIn:  time.Duration(cfg.Playback.FadeInMs) * time.Millisecond,
		FadeOut: time.Duration(cfg.Playback.FadeOutMs) * time.Millisecond,
		Volume:  cfg.Playback.DefaultVolume,
	}
}
