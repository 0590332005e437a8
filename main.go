package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"dashkit/combine"
	"dashkit/config"
	"dashkit/cron"
	"dashkit/ffmpeg"
	"dashkit/merge"
	"dashkit/monitoring"
	"dashkit/storage"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file when present
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	srcFlag := flag.String("src", "", "dashcam source folder to combine (required)")
	dstFlag := flag.String("dst", "", "output folder (default: <src>_Combined next to the source)")
	minFreeFlag := flag.Int("min-free-gb", -1, "minimum free space in GB on the output disk (overrides MIN_FREE_SPACE_GB)")
	watchFlag := flag.String("watch", "", "cron schedule to re-run the pass continuously, e.g. \"@every 10m\"")
	archiveFlag := flag.Bool("archive", false, "upload finished clips to the configured archive bucket")
	flag.Parse()

	if *srcFlag == "" {
		fmt.Fprintln(os.Stderr, "Usage: dashkit -src <folder> [-dst <folder>] [-min-free-gb N] [-watch <schedule>] [-archive]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config.Load()
	if *minFreeFlag >= 0 {
		cfg.MinFreeSpaceGB = *minFreeFlag
	}
	if err := config.EnsureNonNegative("min-free-gb", cfg.MinFreeSpaceGB); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	tools, err := ffmpeg.Locate()
	if err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}

	opts := combine.Options{
		Source:         *srcFlag,
		Target:         *dstFlag,
		MinFreeSpaceGB: cfg.MinFreeSpaceGB,
	}
	if *archiveFlag || cfg.ArchiveEnabled {
		archiver, err := storage.NewArchiver(cfg.Archive)
		if err != nil {
			log.Printf("Error: archive upload requested but not configured: %v", err)
			os.Exit(2)
		}
		opts.Archiver = archiver
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MonitorInterval > 0 {
		if snap, err := monitoring.Take(); err != nil {
			log.Printf("Resource monitoring unavailable: %v", err)
		} else {
			log.Printf("Startup resource usage - RSS: %.1f MB, share of host memory: %.1f%%, goroutines: %d",
				snap.ProcessRSSMB, snap.HostSharePct, snap.Goroutines)
		}
		stopMonitor := make(chan struct{})
		defer close(stopMonitor)
		monitoring.LogEvery(cfg.MonitorInterval, stopMonitor)
	}

	merger := merge.NewMerger(tools)

	runPass := func() {
		if _, err := combine.Run(ctx, merger, opts); err != nil {
			log.Printf("Combine pass failed: %v", err)
		}
	}

	if *watchFlag != "" {
		watcher, err := cron.NewWatcher(*watchFlag, runPass)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid watch schedule %q: %v\n", *watchFlag, err)
			os.Exit(2)
		}
		log.Printf("Watching %s on schedule %q", opts.Source, *watchFlag)
		runPass()
		watcher.Start()
		<-ctx.Done()
		watcher.Stop()
		log.Println("Interrupted, shutting down")
		os.Exit(130)
	}

	if _, err := combine.Run(ctx, merger, opts); err != nil {
		if ctx.Err() != nil {
			log.Println("Interrupted, shutting down")
			os.Exit(130)
		}
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
