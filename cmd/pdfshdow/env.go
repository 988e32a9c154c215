package main

import (
	"io"
	"os"
	"time"

	"github.com/wang824892540/PDFShdow/internal/config"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, configuration, and the worker binary location.
type Environment struct {
	Now        func() time.Time
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	Executable func() (string, error) // worker binary for process isolation
	Config     *config.Config         // Resolved once per command
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:        time.Now,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Executable: os.Executable,
		Config:     config.DefaultConfig(),
	}
}
