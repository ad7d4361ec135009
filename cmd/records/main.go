// records is the command-line front end for the student record store.
//
//	records --config=config/local.yaml list -q alice
//	CONFIG_PATH=config/local.yaml records remove 0
//
// Run "records help" for the full command list.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/aanand-mishra/student-records/internal/cli"
	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/logging"
	"github.com/aanand-mishra/student-records/internal/records"
	"github.com/aanand-mishra/student-records/internal/session"
	"github.com/aanand-mishra/student-records/internal/storage/backend"
)

func main() {
	cfg := config.MustLoad()

	// Only problems go to stderr; stdout is for the command's own output.
	log := logging.New(cfg.Env, os.Stderr, logging.WithLevel(slog.LevelWarn))

	ctx := context.Background()

	slots, err := backend.Open(ctx, cfg.Storage)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot open storage:", err)
		os.Exit(1)
	}

	store, err := records.Open(ctx, slots, records.WithLogger(log))
	if err != nil {
		slots.Close()
		fmt.Fprintln(os.Stderr, "cannot load records:", err)
		os.Exit(1)
	}

	app := cli.New(session.New(store, log), slots, os.Stdin, os.Stdout)
	err = app.Run(ctx, flag.Args())
	slots.Close()

	if err != nil {
		os.Exit(1)
	}
}
