// Package main starts the respect engine daemon process lifecycle.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	respectd "github.com/respectgame/engine/internal/cmd/respectd"
	"github.com/respectgame/engine/internal/platform/config"
)

func main() {
	cfg, err := respectd.ParseConfig()
	if err != nil {
		config.Exitf("parse config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := respectd.Run(ctx, cfg); err != nil {
		config.Exitf("run daemon: %v", err)
	}
}
