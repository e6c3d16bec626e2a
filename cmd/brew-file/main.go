package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/adamancini/brewfile/internal/brew"
	"github.com/adamancini/brewfile/internal/cmd"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := cmd.Execute(version, commit, date); err != nil {
		fmt.Fprintln(os.Stderr, err)
		// A failed brew command exits with brew's status.
		var exitErr *brew.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
