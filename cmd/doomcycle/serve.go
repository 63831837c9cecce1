package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/doomcycle/internal/platform/tui"
	"github.com/vovakirdan/doomcycle/internal/random"
	"github.com/vovakirdan/doomcycle/internal/session"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagServeTick   time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host games over SSH",
	Long: `Start an SSH server where every connection plays its own run.

The SSH user name is the profile: saves, stats and finished runs are
stored per user in the shared profile database.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.doomcycle/host_key

Examples:
  doomcycle serve
  doomcycle serve --ssh :2222
  doomcycle serve --db ./server.db

Players connect with:
  ssh localhost -p 23235`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	def := tui.DefaultSSHServerConfig()
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", def.Address, "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", int(def.IdleTimeout/time.Minute), "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().DurationVar(&flagServeTick, "tick", def.TickInterval, "Wall-clock length of one month")
}

func runServe(_ *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	newHost := func(user string) (*session.Host, error) {
		seed, err := random.NewSeed()
		if err != nil {
			return nil, err
		}
		host, err := session.New(newEngine(seed), store, session.Options{
			Profile:  user,
			Language: settings.Language,
			Logger:   logger.With("user", user),
		})
		if err != nil {
			return nil, err
		}
		src := host.Start("")
		logger.Debug("game ready", "user", user, "source", src)
		return host, nil
	}

	server, err := tui.NewSSHServer(tui.SSHServerConfig{
		Address:      flagSSHAddr,
		HostKeyPath:  flagHostKey,
		IdleTimeout:  time.Duration(flagIdleTimeout) * time.Minute,
		TickInterval: flagServeTick,
	}, newHost, logger)
	if err != nil {
		return err
	}

	fmt.Printf("Starting doomcycle SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")
	return server.ListenAndServe()
}
