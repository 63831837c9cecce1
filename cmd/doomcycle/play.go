package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/doomcycle/internal/platform/tui"
	"github.com/vovakirdan/doomcycle/internal/session"
)

var (
	flagTick  time.Duration
	flagFresh bool
)

var playCmd = &cobra.Command{
	Use:   "play [share-url]",
	Short: "Play in the terminal",
	Long: `Start or resume a run. The last unfinished run of the profile is
restored automatically; a share URL given as argument takes precedence.

Controls:
  Up/Down    - Move the cursor
  Enter      - Pick a device or a crisis response
  S          - Ship a release (reward in, doom up)
  F          - Cycle compliance funding
  P          - Pause the month clock
  X          - Show a share link
  R          - New run (after the run ends)
  Q/Ctrl+C   - Quit

Examples:
  doomcycle play
  doomcycle play --fresh --seed 7
  doomcycle play 'https://doomcycle.dev/play?result=...'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().DurationVar(&flagTick, "tick", tui.DefaultTickInterval, "Wall-clock length of one month")
	playCmd.Flags().BoolVar(&flagFresh, "fresh", false, "Discard the saved run and start over")
}

func runPlay(_ *cobra.Command, args []string) error {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}

	store, err := openStore()
	if err != nil {
		logger.Warn("could not open profile database, progress will not be saved", "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	var hostStore session.Store
	if store != nil {
		hostStore = store
		if flagFresh {
			if err := store.DeleteGame(settings.Profile); err != nil {
				logger.Warn("could not discard save", "error", err)
			}
		}
	}

	host, err := session.New(newEngine(settings.Seed), hostStore, session.Options{
		Profile:  settings.Profile,
		Language: settings.Language,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer host.Close()

	shareURL := ""
	if len(args) == 1 {
		shareURL = args[0]
	}
	src := host.Start(shareURL)
	logger.Info("session started", "source", src, "seed", host.Engine().Seed())

	return tui.Run(host, tui.Options{
		TickInterval: flagTick,
		Width:        width,
		Height:       height,
	})
}
