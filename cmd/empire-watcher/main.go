// Package main is the entry point for empire-watcher.
package main

import (
	"github.com/donaldgifford/empire-watcher/cmd/empire-watcher/cmd"
)

func main() {
	cmd.Execute()
}
