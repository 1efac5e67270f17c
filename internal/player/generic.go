package player

import "context"

// Generic implements the Player interface for players like iina and celluloid
// that accept mpv-compatible arguments.
type Generic struct {
	name string
}

func (g *Generic) Name() string { return g.name }

func (g *Generic) Available() bool { return available(g.name) }

func (g *Generic) Args(streamURL, title string) []string {
	// Both iina and celluloid accept mpv-style flags
	return []string{streamURL, "--force-media-title=" + title}
}

func (g *Generic) Play(ctx context.Context, streamURL, title string) error {
	return run(ctx, g.name, g.Args(streamURL, title))
}
