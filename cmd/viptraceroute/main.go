// Command viptraceroute synthesizes additional virtual hops on a
// host-local virtual network so that an external traceroute toward one
// of its addresses observes N forged intermediate hops before the real
// destination answers.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/ftsell/viptraceroute/internal/config"
	"github.com/ftsell/viptraceroute/internal/orchestrator"
	"github.com/ftsell/viptraceroute/internal/readiness"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "viptraceroute:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}
	cfg.Log.WithField("networks", len(cfg.Networks)).Debug("parsed configuration")

	onReady := func() { readiness.Ready(cfg.Log) }
	if err := orchestrator.Run(cfg, onReady); err != nil {
		return errors.Wrap(err, "starting virtual interfaces")
	}
	return nil
}
