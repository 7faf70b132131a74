package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/acwasm/pkg/scanner"
	"github.com/praetorian-inc/acwasm/pkg/serve"
)

var serveSet setFlags

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a streaming NDJSON server",
	Long: `Run a long-lived server that builds the matcher once, reads requests
from stdin and writes responses to stdout, one JSON object per line.

Request types: find, find_overlapping, is_match, scan, scan_batch, close.
The server exits when stdin closes, on close, or on SIGTERM/SIGINT.`,
	RunE: runServe,
}

func init() {
	serveSet.register(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	set, err := serveSet.load()
	if err != nil {
		return err
	}
	options, err := serveSet.builderOptions(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	core, err := scanner.NewCore(ctx, scanner.Config{
		Set:     set,
		Logger:  newLogger(cmd),
		Options: options,
	})
	if err != nil {
		return err
	}
	defer core.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	srv := serve.NewServer(core, set.Name, cmd.InOrStdin(), cmd.OutOrStdout())
	err = srv.Run(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}
