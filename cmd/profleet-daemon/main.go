package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"profleet/internal/daemon"
)

func main() {
	configPath := flag.String("config", "", "Path to settings.yaml")
	force := flag.Bool("force", false, "Stop an existing daemon before starting")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if daemon.IsRunning() {
		if !*force {
			pid, err := daemon.RunningPID()
			if err != nil {
				log.Fatal("daemon appears running but pid check failed", "err", err)
			}
			log.Info("daemon is already running, use --force to restart", "pid", pid)
			return
		}
		log.Info("stopping existing daemon")
		if err := daemon.StopRunningDaemon(true); err != nil {
			log.Fatal("failed to stop running daemon", "err", err)
		}
	}

	srv, err := daemon.StartDaemon(*configPath)
	if err != nil {
		log.Fatal("failed to start daemon", "err", err)
	}
	log.Info("daemon started, press Ctrl+C to stop", "pid", os.Getpid(), "socket", daemon.SocketPath())

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	log.Info("stopping daemon")
	if err := srv.Close(); err != nil {
		log.Fatal("error shutting down daemon", "err", err)
	}
	log.Info("daemon stopped")
}
