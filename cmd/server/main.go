// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/legaldocs/legaldocs/internal/config"
	"github.com/legaldocs/legaldocs/internal/server"
)

func main() {
	cmd := &cli.Command{
		Name:  "legaldocs",
		Usage: "Start the document management API",
		Flags: config.Flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, config.NewFromCLI(cmd))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
