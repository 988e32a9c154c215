package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	pdfshdow "github.com/wang824892540/PDFShdow"
	"github.com/wang824892540/PDFShdow/internal/config"
	"github.com/wang824892540/PDFShdow/internal/hints"
)

// runTask executes one request and reports its result. An interrupt closes
// the orchestrator, which kills the worker; the task then resolves as a
// worker fault.
func runTask(ctx context.Context, s *session, req pdfshdow.TaskRequest, extra ...pdfshdow.Option) error {
	o, err := s.orchestrator(extra...)
	if err != nil {
		return err
	}
	defer func() {
		if err := o.Close(); err != nil {
			s.log.Warn().Err(err).Msg("stopping workers")
		}
	}()

	start := s.env.Now()
	id, ch := o.Submit(ctx, req)
	s.log.Debug().Str("task", id).Str("recipe", string(req.Recipe)).Msg("submitted")

	var res pdfshdow.TaskResult
	select {
	case res = <-ch:
	case <-ctx.Done():
		s.log.Warn().Msg("interrupted, stopping worker")
		_ = o.Close()
		res = <-ch
	}
	s.log.Debug().Str("task", id).Dur("elapsed", s.env.Now().Sub(start)).Bool("success", res.Success).Msg("finished")

	if !res.Success {
		return withHint(res.Err(), &req)
	}
	if !s.quiet {
		printResult(s.env.Stdout, res)
	}
	if res.Warning != "" {
		color.New(color.FgYellow).Fprintf(s.env.Stderr, "warning: %s\n", res.Warning)
	}
	return nil
}

// printResult prints the output path and its metadata.
func printResult(w io.Writer, res pdfshdow.TaskResult) {
	var details []string
	if res.OutputPageCount != nil {
		details = append(details, fmt.Sprintf("%d pages", *res.OutputPageCount))
	}
	if res.OutputFileSize != nil {
		details = append(details, formatSize(*res.OutputFileSize))
	}
	line := res.Path
	if len(details) > 0 {
		line += " (" + strings.Join(details, ", ") + ")"
	}
	color.New(color.FgGreen).Fprintf(w, "✓ %s\n", line)
}

// formatSize renders a byte count with a binary unit.
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// printError prints err in red.
func printError(w io.Writer, err error) {
	color.New(color.FgRed).Fprintf(w, "error: %v\n", err)
}

// withHint appends an actionable hint to err when one applies. req may be
// nil for errors raised before a request exists.
func withHint(err error, req *pdfshdow.TaskRequest) error {
	if err == nil {
		return nil
	}
	hint := hintFor(err, req)
	if hint == "" {
		return err
	}
	return fmt.Errorf("%w%s", err, hint)
}

func hintFor(err error, req *pdfshdow.TaskRequest) string {
	var notFound *config.NotFoundError
	if errors.As(err, &notFound) {
		return hints.ForConfigNotFound(notFound.Paths)
	}

	var taskErr *pdfshdow.TaskError
	if !errors.As(err, &taskErr) {
		return ""
	}
	msg := taskErr.Message
	switch {
	case taskErr.Kind == pdfshdow.KindWorker:
		return hints.ForWorkerFault()
	case taskErr.Kind == pdfshdow.KindIO:
		return hints.ForOutputDirectory()
	case strings.Contains(msg, pdfshdow.ErrUnsupportedSource.Error()):
		return hints.ForUnsupportedSource()
	case strings.Contains(msg, pdfshdow.ErrInvalidPageSize.Error()):
		return hints.ForPageSize(pdfshdow.PageSizeNames())
	case strings.Contains(msg, pdfshdow.ErrMissingLayout.Error()):
		return hints.ForLayout(layoutIDs(req))
	}
	return ""
}

// layoutIDs lists the element IDs a request's layout must contain.
func layoutIDs(req *pdfshdow.TaskRequest) []string {
	if req == nil {
		return nil
	}
	switch {
	case req.Stacked != nil:
		return []string{pdfshdow.StackedStaticID, pdfshdow.StackedRepeatingID}
	case req.Overlay != nil:
		ids := make([]string, len(req.Overlay.Sources))
		for i, src := range req.Overlay.Sources {
			ids[i] = src.ID
		}
		return ids
	case req.MultiMerge != nil:
		return pdfshdow.MultiMergeIDs[:]
	}
	return nil
}
