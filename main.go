// Command facade generates procedural multi-storey building facades from
// TOML design files or building scripts.
//
//	facade generate examples/tower.facade
//	facade generate --config examples/tower.toml --json > tower.json
//	facade layout --config examples/tower.toml
//	facade section --preset normalized --seed 7
//	facade config > mine.toml
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCommand().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
