package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/starford/moodlog/internal/ics"
	"github.com/starford/moodlog/internal/ledger"
	"github.com/starford/moodlog/internal/mcpserver"
)

// Record records emoji as today's mood and prints the resulting ledger.
// With strict set, emoji must belong to the mood set.
func Record(ctx context.Context, out io.Writer, emoji string, strict bool, opts ...Option) error {
	return withLedger(opts, func(_ *Config, svc *ledger.Service) error {
		if strict {
			if err := svc.CheckMood(emoji); err != nil {
				return err
			}
		}
		l, err := svc.RecordMood(ctx, emoji)
		if err != nil {
			return err
		}
		return printJSON(out, l)
	})
}

// Events prints the calendar events for the store, or for the ledger JSON
// in inputPath when it is set.
func Events(ctx context.Context, out io.Writer, inputPath string, opts ...Option) error {
	return withLedger(opts, func(_ *Config, svc *ledger.Service) error {
		if inputPath == "" {
			return printJSON(out, ledger.ToCalendarEvents(svc.Load(ctx)))
		}
		raw, err := os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		return printJSON(out, ledger.EventsFromJSON(raw, svc.Logger()))
	})
}

// ExportICS writes the iCalendar feed for the store to out.
func ExportICS(ctx context.Context, out io.Writer, opts ...Option) error {
	return withLedger(opts, func(cfg *Config, svc *ledger.Service) error {
		events := ledger.ToCalendarEvents(svc.Load(ctx))
		return ics.Encode(out, cfg.Calendar.Name, events, svc.Moods(), svc.Now())
	})
}

// ServeMCP serves the MCP tools over stdin/stdout until the client disconnects.
func ServeMCP(opts ...Option) error {
	return withLedger(opts, func(_ *Config, svc *ledger.Service) error {
		return mcpserver.New(svc).ServeStdio()
	})
}

func withLedger(opts []Option, fn func(*Config, *ledger.Service) error) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	svc, store, err := app.openLedger(app.logger())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(app.config, svc)
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
