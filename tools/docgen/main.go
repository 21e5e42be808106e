// Package main generates CLI reference documentation from the empire-watcher command tree.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/donaldgifford/empire-watcher/cmd/empire-watcher/cmd"
)

func main() {
	output := flag.String("output", "docs/cli", "output directory for generated docs")
	format := flag.String("format", "markdown", "output format: markdown or man")
	flag.Parse()

	if err := generate(*output, *format); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("CLI %s docs generated in %s/\n", *format, *output)
}

func generate(dir, format string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	root := cmd.Root()
	root.DisableAutoGenTag = true

	switch format {
	case "markdown":
		if err := doc.GenMarkdownTree(root, dir); err != nil {
			return fmt.Errorf("generating markdown docs: %w", err)
		}
	case "man":
		header := &doc.GenManHeader{Title: "EMPIRE-WATCHER", Section: "1", Source: "empire-watcher " + cmd.Version}
		if err := doc.GenManTree(root, header, dir); err != nil {
			return fmt.Errorf("generating man pages: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q (want markdown or man)", format)
	}
	return nil
}
