package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/idcable/internal/app"
	"github.com/Taichi-iskw/idcable/internal/player"
)

// playCmd plays one channel without the grid
var playCmd = &cobra.Command{
	Use:   "play [CHANNEL_ID]",
	Short: "Play a channel",
	Long: `Play a channel in the configured media player and print the player state
until playback fails or the command is interrupted.`,
	Args: cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		check, _ := cmd.Flags().GetBool("check")
		if !check && len(args) == 0 {
			return fmt.Errorf("channel ID is required")
		}

		out := &syncWriter{w: cmd.OutOrStdout()}
		failed := make(chan struct{})
		var failOnce sync.Once

		a, cleanup, err := app.Build(ctx, app.Options{
			OnChange: func(s player.Snapshot) {
				fmt.Fprintln(out, formatSnapshot(s))
				if s.State == player.StateFailed {
					failOnce.Do(func() { close(failed) })
				}
			},
			Notifier:  notifier{w: cmd.ErrOrStderr()},
			LogOutput: cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}
		defer cleanup()

		if check {
			return runPlayerCheck(ctx, cmd, a)
		}

		loadCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
		defer cancel()
		if err := a.Guide.Load(loadCtx); err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}

		if err := a.Guide.Play(args[0]); err != nil {
			return fmt.Errorf("failed to play channel: %w", err)
		}

		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "stopping")
			return nil
		case <-failed:
			return fmt.Errorf("playback failed")
		}
	},
}

func runPlayerCheck(ctx context.Context, cmd *cobra.Command, a *app.App) error {
	cmd.Printf("Player command: %s\n", a.Config.Player.Command)
	cmd.Printf("Engine: %s\n", a.Config.Player.Engine)

	if !a.Media.CanPlayNative() {
		return fmt.Errorf("player %q not found in PATH", a.Config.Player.Command)
	}

	version, err := a.Media.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to get player version: %w", err)
	}
	cmd.Printf("Version: %s\n", version)
	return nil
}

func formatSnapshot(s player.Snapshot) string {
	if !s.Visible {
		return fmt.Sprintf("[%s]", s.State)
	}
	line := fmt.Sprintf("[%s] %s (%s)", s.State, s.Title, s.Meta)
	if s.Proxied {
		line += " via proxy"
	}
	return line
}

// notifier prints blocking notices for the command line
type notifier struct {
	w io.Writer
}

func (n notifier) Alert(msg string) {
	fmt.Fprintln(n.w, msg)
}

// syncWriter serializes writes from player goroutines
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func init() {
	playCmd.Flags().Bool("check", false, "Check the configured media player and exit")
	rootCmd.AddCommand(playCmd)
}
