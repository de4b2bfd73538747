package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yurufuwa/board/internal/app"
	"github.com/yurufuwa/board/pkg/config"
	"github.com/yurufuwa/board/pkg/logging"
)

// cli carries what every command needs after the persistent pre-run
type cli struct {
	configPath string
	room       string
	verbose    bool

	cfg *config.Config
	out io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:   "boardctl",
		Short: "Post, react and pin on a yurufuwa board",
		Long: `boardctl works on the same store as the board server.

Every command is one page load: the room is read from the store, lifetimes
are recomputed from each post's creation time, the command is applied and
the page is closed again. "watch" keeps the page open and lets posts expire.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.GetLogger().Sync()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./config.yaml, $HOME/.yurufuwa, /etc/yurufuwa)")
	root.PersistentFlags().StringVarP(&c.room, "room", "r", "", "room to load (default: board_room)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		c.postCmd(),
		c.listCmd(),
		c.reactCmd(),
		c.pinCmd(),
		c.rmCmd(),
		c.notificationsCmd(),
		c.roomsCmd(),
		c.watchCmd(),
	)
	return root
}

func (c *cli) setup() error {
	cfg, err := config.LoadFile(c.configPath)
	if err != nil {
		return err
	}
	if c.verbose {
		cfg.Logging.Level = "DEBUG"
	} else if cfg.Logging.Level == "INFO" {
		// Log lines would drown the command output
		cfg.Logging.Level = "WARN"
	}
	cfg.Logging.Format = "text"
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if c.room == "" {
		c.room = cfg.Board.Room
	}
	c.cfg = cfg
	return nil
}

// page opens the store, runs fn against a freshly loaded session of the
// room and closes both afterwards
func (c *cli) page(ctx context.Context, fn func(*app.Session) error) error {
	a, err := app.New(ctx, c.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logging.GetLogger().Warn("Failed to close store", zap.Error(err))
		}
	}()

	s, err := a.Open(ctx, c.room)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
