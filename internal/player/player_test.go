package player

import (
	"slices"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"mpv", "mpv"},
		{"vlc", "vlc"},
		{"iina", "iina"},
		{"celluloid", "celluloid"},
		{"unknown", "mpv"},
		{"VLC", "vlc"},
		{"Celluloid", "celluloid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.name).Name(); got != tt.want {
				t.Errorf("New(%q).Name() = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestArgsKeepUntrustedValuesSeparate(t *testing.T) {
	const (
		streamURL = "http://h.akamaihd.net/i/x/master.m3u8?hdnea=st=1~hmac=ab"
		title     = "Frankreich - Polen; rm -rf ~ $(id)"
	)

	tests := []struct {
		player    Player
		wantTitle string
	}{
		{&MPV{}, "--force-media-title=" + title},
		{&VLC{}, title},
		{&Generic{name: "iina"}, "--force-media-title=" + title},
	}

	for _, tt := range tests {
		t.Run(tt.player.Name(), func(t *testing.T) {
			args := tt.player.Args(streamURL, title)
			if args[0] != streamURL {
				t.Errorf("first arg = %q, want the stream URL", args[0])
			}
			if !slices.Contains(args, tt.wantTitle) {
				t.Errorf("args %q do not carry the title as a single argument", args)
			}
		})
	}
}
