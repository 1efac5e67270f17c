package player

import "context"

// VLC implements the Player interface for VLC media player.
type VLC struct{}

func (v *VLC) Name() string { return "vlc" }

func (v *VLC) Available() bool { return available("vlc") }

func (v *VLC) Args(streamURL, title string) []string {
	return []string{
		streamURL,
		"--meta-title", title,
		"--play-and-exit",
	}
}

// Play launches VLC and waits for it to exit.
func (v *VLC) Play(ctx context.Context, streamURL, title string) error {
	return run(ctx, "vlc", v.Args(streamURL, title))
}
