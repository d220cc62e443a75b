package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/lpp-tools/lpp-recorder/config"
	"github.com/lpp-tools/lpp-recorder/internal"
	"github.com/lpp-tools/lpp-recorder/lpp"
	"github.com/lpp-tools/lpp-recorder/recorder"
	"github.com/lpp-tools/lpp-recorder/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	runModeFlag := flag.String("run-mode", "once", "once|perpetual")
	configPath := flag.String("config-file-path", config.DefaultPath, "path to the TOML configuration file")
	flag.Parse()

	mode, err := recorder.ParseRunMode(*runModeFlag)
	if err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	closeLog, err := internal.InitLogging(cfg.Logging.ConsoleLevel, cfg.Logging.FilePath)
	if err != nil {
		return err
	}
	defer closeLog()

	slog.Info("starting LPP snapshot recorder",
		"run_mode", mode,
		"storage_directory", cfg.LPP.Recording.StorageDirectoryPath,
	)

	client, err := lpp.NewClient(lpp.ClientOptions{
		BaseURL:           cfg.LPP.API.BaseURL,
		UserAgent:         cfg.LPP.API.UserAgent,
		RequestsPerSecond: cfg.LPP.API.RequestsPerSecond,
	})
	if err != nil {
		return err
	}

	root, err := storage.NewRoot(cfg.LPP.Recording.StorageDirectoryPath)
	if err != nil {
		return err
	}

	snapshots, err := recorder.New(client, cfg, root)
	if err != nil {
		return err
	}

	token := recorder.NewCancellationToken()
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	signals := make(chan os.Signal, 2)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		slog.Info("stop requested, finishing the current cycle first")
		token.Cancel()
		// A second signal aborts the in-flight cycle too.
		<-signals
		slog.Warn("second stop request, aborting the current cycle")
		stop()
	}()

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- recorder.RunLoop(ctx, "snapshots", mode,
			cfg.LPP.Recording.SnapshotInterval.Duration, token, snapshots.Snapshot)
	}()

	if interval := cfg.LPP.Recording.ArrivalsInterval.Duration; interval > 0 {
		arrivals := recorder.NewArrivals(client, cfg, root)
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- recorder.RunLoop(ctx, "arrivals", mode, interval, token, arrivals.Snapshot)
		}()
	}

	wg.Wait()
	close(errs)

	for loopErr := range errs {
		if loopErr != nil {
			return loopErr
		}
	}
	return nil
}
