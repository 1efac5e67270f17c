package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sportsdl/internal/config"
	"sportsdl/internal/extract"
	"sportsdl/internal/history"
	"sportsdl/internal/httputil"
	"sportsdl/internal/log"
	"sportsdl/internal/media"
	"sportsdl/internal/player"
	"sportsdl/internal/ui"
)

// extractRun is the default command: sportsdl <url>
func extractRun(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	rawURL := args[0]

	ctx := log.ContextWithCorrelationID(cmd.Context(), "")
	l := log.WithContext(ctx, log.WithComponent("cli"))

	e, err := extract.ForURL(newExtractors(cfg), rawURL)
	if err != nil {
		return err
	}
	l.Debug().Str(log.FieldExtractor, e.Name()).Str(log.FieldURL, rawURL).Msg("extracting")

	info, err := e.Extract(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("%s: %w", e.Name(), err)
	}

	if cfg.History {
		recordHistory(ctx, info)
	}

	var chosen media.Format
	switch {
	case flagPick:
		chosen, err = ui.PickFormat(info.Title, info.Formats)
		if err != nil {
			return err
		}
	case flagPlay:
		var ok bool
		if chosen, ok = playableFormat(info); !ok {
			return fmt.Errorf("no playable format for %s", info.ID)
		}
	}

	switch {
	case flagJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(info); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
	case flagPick:
		fmt.Println(chosen.URL)
	case !flagPlay:
		fmt.Print(ui.RenderSummary(info))
	}

	if flagPlay {
		p := player.New(cfg.Player)
		if !p.Available() {
			return fmt.Errorf("%s not found in PATH", p.Name())
		}
		l.Debug().Str("player", p.Name()).Str("format", chosen.FormatID).Msg("starting player")
		return p.Play(ctx, chosen.URL, info.Title)
	}
	return nil
}

func newExtractors(c *config.Config) []extract.Extractor {
	fetcher := httputil.NewFetcher(httputil.Options{
		Timeout:   c.HTTP.Timeout.Duration,
		UserAgent: c.HTTP.UserAgent,
		RateLimit: c.HTTP.RateLimit,
	})
	return extract.New(extract.Options{
		Fetcher:    fetcher,
		GeoHeaders: c.GeoHeaders(),
		Laola1: extract.Laola1Options{
			MetadataURL: c.Laola1.MetadataURL,
			Portal:      c.Laola1.Portal,
			Language:    c.Laola1.Language,
		},
	})
}

// playableFormat returns the best HLS format. External players cannot open
// F4M manifests, so HDS is only used when nothing else exists.
func playableFormat(info *media.Info) (media.Format, bool) {
	for i := len(info.Formats) - 1; i >= 0; i-- {
		if info.Formats[i].Protocol == media.ProtocolHLS {
			return info.Formats[i], true
		}
	}
	return info.Best()
}

// recordHistory stores the extraction. Failures are logged, not returned.
func recordHistory(ctx context.Context, info *media.Info) {
	l := log.WithContext(ctx, log.WithComponent("history"))

	path, err := config.HistoryPath()
	if err != nil {
		l.Warn().Err(err).Msg("resolving history path")
		return
	}
	store, err := history.Open(path)
	if err != nil {
		l.Warn().Err(err).Msg("opening history")
		return
	}
	defer store.Close()

	if err := store.Save(ctx, history.EntryFromInfo(info, time.Now())); err != nil {
		l.Warn().Err(err).Msg("saving history")
	}
}
