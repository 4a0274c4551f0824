package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/alnah/go-docstyle/internal/config"
)

// runInit writes a starter config file, or prints it when no path is given.
// An existing file is never overwritten.
func runInit(args []string, env *Environment) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: init takes at most one path", ErrUsage)
	}

	sample, err := config.Sample()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		_, err := env.Stdout.Write(sample)
		return err
	}

	path := args[0]
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s already exists", ErrUsage, path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	// #nosec G306 -- config files are meant to be readable
	if err := os.WriteFile(path, sample, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	fmt.Fprintf(env.Stdout, "Created %s\n", path)
	return nil
}
