package player

import "context"

// MPV implements the Player interface for mpv.
type MPV struct{}

func (m *MPV) Name() string { return "mpv" }

func (m *MPV) Available() bool { return available("mpv") }

func (m *MPV) Args(streamURL, title string) []string {
	return []string{
		streamURL,
		"--force-media-title=" + title,
		"--hls-bitrate=max",
		"--really-quiet",
	}
}

// Play launches mpv and waits for it to exit.
func (m *MPV) Play(ctx context.Context, streamURL, title string) error {
	return run(ctx, "mpv", m.Args(streamURL, title))
}
