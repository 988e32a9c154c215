package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	pdfshdow "github.com/wang824892540/PDFShdow"
	"github.com/wang824892540/PDFShdow/internal/yamlutil"
)

// manifest is a batch file: a list of requests run concurrently.
type manifest struct {
	Tasks []pdfshdow.TaskRequest `yaml:"tasks"`
}

// readManifest loads and checks a batch manifest.
func readManifest(path string) (*manifest, error) {
	var m manifest
	if err := yamlutil.ReadFile(path, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadManifest, err)
	}
	if len(m.Tasks) == 0 {
		return nil, fmt.Errorf("%w: %s has no tasks", ErrReadManifest, path)
	}
	return &m, nil
}

// runBatch submits every task of a manifest to one orchestrator, each in
// its own worker, and reports results in manifest order.
func runBatch(ctx context.Context, args []string, env *Environment) error {
	f, pos, err := parseBatchFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return argsError("batch", "one manifest", len(pos))
	}
	s, err := newSession(&f.common, env)
	if err != nil {
		return withHint(err, nil)
	}
	m, err := readManifest(pos[0])
	if err != nil {
		return err
	}

	o, err := s.orchestrator()
	if err != nil {
		return err
	}
	defer func() {
		if err := o.Close(); err != nil {
			s.log.Warn().Err(err).Msg("stopping workers")
		}
	}()

	chans := make([]<-chan pdfshdow.TaskResult, len(m.Tasks))
	for i, req := range m.Tasks {
		id, ch := o.Submit(ctx, req)
		s.log.Debug().Str("task", id).Int("index", i).Str("recipe", string(req.Recipe)).Msg("submitted")
		chans[i] = ch
	}

	barOut := env.Stderr
	if s.quiet {
		barOut = io.Discard
	}
	bar := newProgressBar(barOut, len(m.Tasks), "tasks")

	stop := context.AfterFunc(ctx, func() {
		s.log.Warn().Msg("interrupted, stopping workers")
		_ = o.Close()
	})
	defer stop()

	results := make([]pdfshdow.TaskResult, len(chans))
	for i, ch := range chans {
		results[i] = <-ch
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	failed := 0
	for i, res := range results {
		if !res.Success {
			failed++
			printError(env.Stderr, fmt.Errorf("task %d: %w", i+1, withHint(res.Err(), &m.Tasks[i])))
			continue
		}
		if !s.quiet {
			printResult(env.Stdout, res)
		}
		if res.Warning != "" {
			color.New(color.FgYellow).Fprintf(env.Stderr, "warning: task %d: %s\n", i+1, res.Warning)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrBatchFailed, failed, len(results))
	}
	return nil
}

// newProgressBar draws a counting bar on w.
func newProgressBar(w io.Writer, total int, unit string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(unit),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
	)
}
