// Command admin runs maintenance jobs against the listing store.
//
//	admin seed                  insert the example listings, skipping existing names
//	admin reprice [--dry-run]   re-derive every price_brl from the current rate
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/bootstrap"
	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/core/config"
	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/core/logger"
	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/service"
)

var errUsage = errors.New("usage: admin [--config path] <seed|reprice [--dry-run]>")

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("admin", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfgPath := fs.String("config", os.Getenv("CONFIG_PATH"), "config file (YAML)")
	dryRun := fs.Bool("dry-run", false, "reprice: report changes without writing them")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() != 1 {
		return errUsage
	}
	cmd := fs.Arg(0)
	if cmd != "seed" && cmd != "reprice" {
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	cfg, err := config.Read(*cfgPath)
	if err != nil {
		return err
	}
	log, flush := logger.Build(logger.Options{
		Level: cfg.Log.Level,
		JSON:  cfg.Log.JSON,
		Out:   zapcore.Lock(zapcore.AddSync(os.Stderr)),
	})
	defer flush()

	store, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()
	rp, err := bootstrap.RateProvider(cfg, log)
	if err != nil {
		return err
	}
	svc := service.NewListingService(store.Listings, rp, log.Named("service"))

	switch cmd {
	case "seed":
		n, err := svc.Seed(ctx, service.SeedListings())
		if err != nil {
			return err
		}
		log.Info("seed finished", zap.Int("created", n))
		_, err = fmt.Fprintf(out, "seeded %d listing(s)\n", n)
		return err
	default:
		res, err := svc.Reprice(ctx, *dryRun)
		if err != nil {
			return err
		}
		log.Info("reprice finished", zap.Int("changed", len(res)), zap.Bool("dry_run", *dryRun))
		if res == nil {
			res = []service.RepriceResult{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
}
