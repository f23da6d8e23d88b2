// Package main provides the clippings command: fetch tagged bookmarks
// from Raindrop.io, regenerate the day's markdown draft, and publish
// it to Micro.blog via Micropub.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"clippings/internal/app"
	"clippings/internal/config"
	"clippings/internal/logger"
)

func main() {
	dateFlag := flag.String("date", "", "Target date (YYYY-MM-DD, default: today)")
	days := flag.Int("days", 1, "Trailing days to collect into the post")
	publish := flag.Bool("publish", false, "Publish the regenerated draft via Micropub")
	noEdit := flag.Bool("no-edit", false, "Do not open the editor after writing the draft")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.PrettyLog)

	target := time.Now()

	if *dateFlag != "" {
		parsed, err := time.ParseInLocation("2006-01-02", *dateFlag, time.Local)
		if err != nil {
			log.Errorf("Invalid date %q, expected YYYY-MM-DD", *dateFlag)
			os.Exit(1)
		}

		target = parsed
	}

	if *days < 1 {
		log.Errorf("-days must be at least 1, got %d", *days)
		os.Exit(1)
	}

	opts := app.Options{
		Date:    target,
		Days:    *days,
		Publish: *publish,
		NoEdit:  *noEdit,
	}

	if err := app.New(cfg, log).Run(opts); err != nil {
		log.Errorf("clippings failed: %v", err)
		os.Exit(1)
	}
}
