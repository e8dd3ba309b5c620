package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

// DefaultHistoryLimit количество записей истории, выводимых по умолчанию
const DefaultHistoryLimit = 20

func (c *Cli) runForecast(ctx context.Context, args []string) error {
	city := strings.TrimSpace(strings.Join(args, " "))
	if city == "" {
		return fmt.Errorf("usage: pronostico forecast <city>")
	}

	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	fc, err := c.forecast.Forecast(ctx, session.AccessToken, city)
	if err != nil {
		return explainUnauthorized(err)
	}

	c.io.Printf("City:        %s\n", fc.City)
	c.io.Printf("Forecast:    %s\n", fc.Forecast)
	c.io.Printf("Temperature: %.1f °C\n", fc.Temperature)

	return nil
}

func (c *Cli) runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	limit := fs.Int("limit", DefaultHistoryLimit, "number of entries")
	skip := fs.Int("skip", 0, "entries to skip")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("usage: pronostico history [-limit N] [-skip N]: %w", err)
	}
	if *limit <= 0 || *skip < 0 {
		return fmt.Errorf("limit must be positive and skip non-negative")
	}

	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	entries, err := c.forecast.History(ctx, session.AccessToken, *skip, *limit)
	if err != nil {
		return explainUnauthorized(err)
	}

	if len(entries) == 0 {
		c.io.Println("No forecast lookups yet.")
		return nil
	}

	w := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "WHEN\tCITY\tTEMPERATURE")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.1f °C\n", e.QueryTime.Local().Format(time.DateTime), e.City, e.Temperature)
	}
	return w.Flush()
}
