package main

import (
	"context"

	pdfshdow "github.com/wang824892540/PDFShdow"
	"github.com/wang824892540/PDFShdow/internal/config"
)

// runWorker serves one task over stdin and stdout. The parent passes its
// resolved settings through the environment, so no config file is read.
func runWorker(ctx context.Context, env *Environment) error {
	cfg := config.DefaultConfig()
	applyEnvSettings(loadEnvSettings(), cfg)
	env.Config = cfg

	log := newLogger(env.Stderr, cfg.Log, false).With().Str("role", "worker").Logger()
	s := &session{cfg: cfg, log: log, quiet: true, env: env}

	log.Debug().Msg("serving task")
	return pdfshdow.ServeWorker(ctx, env.Stdin, env.Stdout, s.options()...)
}
