package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"medifind/internal/cli"
	"medifind/internal/config"
	"medifind/internal/session"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	sessionPath, err := session.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "medifind: %v\n", err)
		os.Exit(1)
	}
	sessions := session.NewFileStore(sessionPath)

	app := cli.NewApp(cfg, sessions, log, os.Stdout, os.Stderr)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "medifind: %v\n", err)
		}
		os.Exit(1)
	}
}
