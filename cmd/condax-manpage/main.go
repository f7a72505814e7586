package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/yamaton/condax/cmd/condax"
	"github.com/yamaton/condax/internal/version"
)

func main() {
	rootCmd := condax.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "CONDAX",
		Section: "1",
		Source:  "condax " + version.Version,
		Manual:  "condax manual",
	}

	if err := doc.GenMan(rootCmd, header, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
