package main

import (
	"flag"

	"github.com/charmbracelet/log"

	"profleet/internal/app"
	"profleet/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "Path to settings.yaml")
	flag.Parse()

	controller := app.New(app.Options{ConfigPath: *configPath})
	if err := tui.Run(controller); err != nil {
		log.Fatal("tui exited with error", "err", err)
	}
}
