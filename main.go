package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tui "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"

	"motionpanel/api"
)

type Config struct {
	// backend
	APIBase string

	// polling
	StreamPoll  time.Duration
	MappingPoll time.Duration
	SamplePoll  time.Duration

	// render
	MaxPoints int
	ViewSplit int

	// export
	SnapshotPath string

	AltScreen bool
}

var config = Config{
	APIBase: "http://127.0.0.1:8000",

	StreamPoll:  time.Second,
	MappingPoll: 1500 * time.Millisecond,
	SamplePoll:  50 * time.Millisecond,

	MaxPoints: 150,
	ViewSplit: 35,

	SnapshotPath: "motionpanel-snapshot.html",

	AltScreen: true,
}

func main() {
	log.SetOutput(os.Stdout)
	flag.StringVar(&config.APIBase, "api", config.APIBase, "Base URL of the mapping service")
	flag.DurationVar(&config.StreamPoll, "stream-poll", config.StreamPoll, "Stream directory poll interval")
	flag.DurationVar(&config.MappingPoll, "mapping-poll", config.MappingPoll, "Mapping list poll interval")
	flag.DurationVar(&config.SamplePoll, "sample-poll", config.SamplePoll, "Stream value sample interval")
	flag.IntVar(&config.MaxPoints, "max-points", config.MaxPoints, "Samples kept per plotted stream")
	flag.IntVar(&config.ViewSplit, "view-split", config.ViewSplit, "Split the view at this % of the total screen width [20,80]")
	flag.StringVar(&config.SnapshotPath, "snapshot", config.SnapshotPath, "Output path for HTML chart snapshots")
	flag.BoolVar(&config.AltScreen, "alt-screen", config.AltScreen, "Use the terminal alternate screen buffer")
	flag.Parse()

	if err := validateAndNormalizeConfig(); err != nil {
		log.Fatal(err)
	}

	if !term.IsTerminal(os.Stdout.Fd()) {
		log.Fatal("motionpanel needs an interactive terminal")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := newModel(ctx, api.NewClient(config.APIBase))
	opts := []tui.ProgramOption{tui.WithInputTTY()}
	if config.AltScreen {
		opts = append(opts, tui.WithAltScreen())
	}
	if _, err := tui.NewProgram(m, opts...).Run(); err != nil {
		log.Fatal(err)
	}
}

func validateAndNormalizeConfig() error {
	if config.APIBase == "" {
		return fmt.Errorf("-api must not be empty")
	}
	if config.StreamPoll <= 0 {
		return fmt.Errorf("-stream-poll must be > 0")
	}
	if config.MappingPoll <= 0 {
		return fmt.Errorf("-mapping-poll must be > 0")
	}
	if config.SamplePoll <= 0 {
		return fmt.Errorf("-sample-poll must be > 0")
	}
	if config.MaxPoints < 2 {
		return fmt.Errorf("-max-points must be >= 2")
	}
	if config.SnapshotPath == "" {
		return fmt.Errorf("-snapshot must not be empty")
	}
	config.ViewSplit = max(20, config.ViewSplit)
	config.ViewSplit = min(80, config.ViewSplit)
	return nil
}
