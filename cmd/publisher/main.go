// Publisher runs the pipeline on an hourly schedule for a bounded window,
// sized for a free CI runner's job time limit.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/nexustopic/autoblog/internal/app"
	"github.com/nexustopic/autoblog/internal/config"
	"github.com/nexustopic/autoblog/internal/logger"
	"github.com/nexustopic/autoblog/internal/scheduler"
)

type cliOptions struct {
	Hours     int    `long:"hours" default:"15" description:"Total hours to keep publishing"`
	Articles  int    `long:"articles" default:"1" description:"Articles per scheduled run"`
	Immediate bool   `long:"immediate" description:"Run once before the first interval elapses"`
	Config    string `long:"config" default:"configs/config.yaml" description:"Path to the YAML config file"`
}

func main() {
	godotenv.Load()
	logger.Init()

	var opts cliOptions
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	a := app.New(cfg, app.Options{Articles: opts.Articles})

	s := scheduler.New(a.Run, scheduler.Options{
		Interval:  time.Hour,
		Duration:  time.Duration(opts.Hours) * time.Hour,
		Immediate: opts.Immediate,
	})

	stats := s.Run(context.Background())
	if stats.Successful == 0 {
		logger.Error("No scheduled run succeeded", "failed", stats.Failed)
		os.Exit(1)
	}
}
