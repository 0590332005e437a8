// Command contactsheet renders preview grids for dashcam recordings: it
// samples evenly spaced frames from each video and composes them into a
// single PNG next to the source file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"dashkit/config"
	"dashkit/ffmpeg"
	"dashkit/thumbnail"
)

func main() {
	colsFlag := flag.Int("cols", 3, "number of thumbnail columns")
	rowsFlag := flag.Int("rows", 4, "number of thumbnail rows")
	widthFlag := flag.Int("width", 320, "maximum thumbnail width in pixels")
	heightFlag := flag.Int("height", 180, "maximum thumbnail height in pixels")
	gapFlag := flag.Int("gap", 5, "gap between thumbnails in pixels")
	marginFlag := flag.Int("margin", 5, "margin around the grid in pixels")
	jobsFlag := flag.Int("jobs", 1, "number of videos to process in parallel")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: contactsheet [options] video [video...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	checks := []error{
		config.EnsurePositive("cols", *colsFlag),
		config.EnsurePositive("rows", *rowsFlag),
		config.EnsurePositive("width", *widthFlag),
		config.EnsurePositive("height", *heightFlag),
		config.EnsureNonNegative("gap", *gapFlag),
		config.EnsureNonNegative("margin", *marginFlag),
		config.EnsurePositive("jobs", *jobsFlag),
	}
	for _, err := range checks {
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	tools, err := ffmpeg.Locate()
	if err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}

	layout := thumbnail.Layout{
		Cols:   *colsFlag,
		Rows:   *rowsFlag,
		Gap:    *gapFlag,
		Margin: *marginFlag,
	}
	generator, err := thumbnail.NewGenerator(tools, tools, layout, *widthFlag, *heightFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var videos []string
	for _, arg := range flag.Args() {
		if !thumbnail.IsVideoFile(arg) {
			log.Printf("Skipping %s: not a recognized video file", arg)
			continue
		}
		videos = append(videos, arg)
	}
	if len(videos) == 0 {
		log.Println("No video files to process")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	succeeded, failed := generator.ProcessAll(ctx, videos, *jobsFlag)
	log.Printf("Done: %d sheets written, %d failed", succeeded, failed)

	if ctx.Err() != nil {
		os.Exit(130)
	}
}
