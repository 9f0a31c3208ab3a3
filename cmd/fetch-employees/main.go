package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"employee-directory/internal/app"
	"employee-directory/internal/config"
	"employee-directory/internal/directory"
	"employee-directory/internal/domain"
	"employee-directory/internal/logger"
)

func main() {
	var (
		configPath = flag.String("config_path", "", "optional YAML config, env overrides it")
		query      = flag.String("q", "", "case-insensitive search over names, email, projects and position")
		modeFlag   = flag.String("mode", "", "sparse or exhaustive (default: sparse without -q, exhaustive with it)")
		asJSON     = flag.Bool("json", false, "print groups as JSON")
	)
	flag.Parse()

	start := time.Now()
	err := run(*configPath, *query, *modeFlag, *asJSON, os.Stdout)
	stdlog.Printf("Execution finished in %s", time.Since(start))
	if err != nil {
		stdlog.Fatalf("Job failed: %v", err)
	}
}

func run(configPath, query, modeFlag string, asJSON bool, out io.Writer) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := directory.Options{Query: query}
	if modeFlag != "" {
		mode, ok := directory.ParseMode(modeFlag)
		if !ok {
			return fmt.Errorf("invalid -mode %q", modeFlag)
		}
		opts.Mode, opts.ModeSet = mode, true
	}

	cfg, err := config.New(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(&cfg.Logger)
	if err != nil {
		return fmt.Errorf("cannot initialize logger: %w", err)
	}
	defer log.Sync()

	r, err := app.NewRefresher(ctx, cfg, log)
	if err != nil {
		return err
	}
	res, err := r.Refresh(ctx)
	if err != nil {
		log.Error("fetch failed", zap.Int("partial", len(res.Employees)), zap.Error(err))
		return err
	}

	view := directory.View(res.Employees, opts)
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view.Groups)
	}
	return printDirectory(out, view)
}

// printDirectory writes one block per position group.
func printDirectory(w io.Writer, res directory.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, g := range res.Groups {
		fmt.Fprintf(tw, "%s (%d)\n", g.Position, len(g.Employees))
		for _, e := range g.Employees {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
				e.FullName(),
				e.Contact.Email,
				e.Contact.Phone,
				strings.Join(e.Projects, ", "),
				contactMark(e),
			)
		}
	}
	fmt.Fprintf(tw, "%d of %d employees, %s\n", len(res.Matched), len(res.Employees), res.Mode)
	return tw.Flush()
}

func contactMark(e domain.Employee) string {
	if e.HasMatchingContact {
		return "in contacts"
	}
	return ""
}
