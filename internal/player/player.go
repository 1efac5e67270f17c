// Package player launches external media players. Every invocation uses
// exec.Command with an explicit argument slice, so remote data such as titles
// and stream URLs is never interpreted by a shell.
package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Player is the interface for media player implementations.
type Player interface {
	// Play starts playback of streamURL and blocks until the player exits.
	Play(ctx context.Context, streamURL, title string) error

	// Args returns the command line Play would use.
	Args(streamURL, title string) []string

	// Name returns the player name.
	Name() string

	// Available checks if the player binary exists in PATH.
	Available() bool
}

// New creates a player by name.
func New(name string) Player {
	name = strings.ToLower(name)
	switch name {
	case "mpv":
		return &MPV{}
	case "vlc":
		return &VLC{}
	case "iina", "celluloid":
		return &Generic{name: name}
	default:
		return &MPV{} // Default to mpv
	}
}

// run starts the player attached to the terminal. A non-zero exit is how most
// players report that the user closed the window, so it is not an error.
func run(ctx context.Context, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil
		}
		return fmt.Errorf("running %s: %w", name, err)
	}
	return nil
}

func available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
