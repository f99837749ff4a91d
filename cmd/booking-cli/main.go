package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ArcadiiFlorean/Consultant-host-version/internal/client"
	"github.com/ArcadiiFlorean/Consultant-host-version/internal/config"
	"github.com/ArcadiiFlorean/Consultant-host-version/internal/logger"
	"github.com/ArcadiiFlorean/Consultant-host-version/internal/wizard"
)

type options struct {
	date     string
	time     string
	packages bool
	load     time.Duration
	workers  int
}

func main() {
	var opts options
	flag.StringVar(&opts.date, "date", "", "date to select (YYYY-MM-DD)")
	flag.StringVar(&opts.time, "time", "", "time to select (HH:MM), requires -date")
	flag.BoolVar(&opts.packages, "packages", false, "list the active service packages")
	flag.DurationVar(&opts.load, "load", 0, "hammer the read endpoints for this long and print latency stats")
	flag.IntVar(&opts.workers, "workers", 10, "concurrent workers for -load")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "booking-cli: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.time != "" && opts.date == "" {
		return errors.New("-time requires -date")
	}

	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := client.NewClient(cfg.APIBaseURL, client.WithTimeout(cfg.HTTPTimeout))
	log.Debug("booking client ready", zap.String("base_url", cfg.APIBaseURL))

	if opts.load > 0 {
		if opts.workers <= 0 {
			return errors.New("-workers must be > 0")
		}
		p := &loadRunner{client: c, workers: opts.workers, duration: opts.load, logger: log}
		p.Run(ctx)
		p.PrintReport(os.Stdout)
		return nil
	}

	if opts.packages {
		if err := printPackages(ctx, c); err != nil {
			return err
		}
	}

	return book(ctx, c, cfg, opts, log)
}

func printPackages(ctx context.Context, c *client.Client) error {
	pkgs, err := c.FetchServices(ctx)
	if err != nil {
		return describe(err)
	}

	fmt.Println("Packages:")
	for _, p := range pkgs {
		marker := " "
		if p.Popular {
			marker = "*"
		}
		fmt.Printf(" %s %-40s %8.2f %s  %d min\n", marker, p.Name, p.Price, p.Currency, p.Duration)
		for _, f := range p.Features {
			fmt.Printf("     - %s\n", f)
		}
	}
	fmt.Println()
	return nil
}

func book(ctx context.Context, c *client.Client, cfg config.ClientConfig, opts options, log *zap.Logger) error {
	var chosen *wizard.Selection
	stepOpts := []wizard.Option{wizard.WithLogger(log.Named("wizard"))}
	if cfg.FailClosed {
		stepOpts = append(stepOpts, wizard.WithFailClosed())
	}

	step := wizard.NewStep(ctx, c, func(sel wizard.Selection) { chosen = &sel }, stepOpts...)
	defer step.Close()

	if err := step.Load(); err != nil {
		return errors.New(step.State().ErrorMessage)
	}

	st := step.State()
	if opts.date == "" {
		printAvailability(st.Availability)
		return nil
	}

	if err := step.SelectDate(opts.date); err != nil {
		printAvailability(st.Availability)
		return fmt.Errorf("select date %s: %w", opts.date, err)
	}
	if opts.time == "" {
		fmt.Printf("Times on %s: %s\n", opts.date, strings.Join(st.Availability.Times(opts.date), ", "))
		return nil
	}
	if err := step.SelectTime(opts.time); err != nil {
		fmt.Printf("Times on %s: %s\n", opts.date, strings.Join(st.Availability.Times(opts.date), ", "))
		return fmt.Errorf("select time %s: %w", opts.time, err)
	}

	advanced, err := step.Advance()
	if err != nil {
		if notice := step.State().Notice; notice != "" {
			fmt.Println(notice)
		}
		return err
	}
	if !advanced {
		st = step.State()
		fmt.Println(st.Notice)
		if st.ErrorMessage != "" {
			return errors.New(st.ErrorMessage)
		}
		printAvailability(st.Availability)
		return nil
	}

	fmt.Printf("Slot %s at %s is yours to book. Continue with your contact details.\n", chosen.Date, chosen.Time)
	return nil
}

func printAvailability(a client.Availability) {
	dates := a.Dates()
	if len(dates) == 0 {
		fmt.Println("No available slots at the moment.")
		return
	}
	fmt.Println("Available slots:")
	for _, d := range dates {
		fmt.Printf("  %s  %s\n", d, strings.Join(a.Times(d), " "))
	}
}

func describe(err error) error {
	if cerr, ok := client.AsError(err); ok {
		return errors.New(cerr.UserMessage())
	}
	return err
}
