// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command cfgtree inspects hierarchical configuration files the way
// the cfgtree package sees them.
//
//	cfgtree get config.yaml server.listeners[0]
//	cfgtree get --configure config.yaml
//	cfgtree unused --read server --read db --fail dev.yaml prod.yaml
//	cfgtree edit config.yaml server
//
// Every flag can also be set through an environment variable prefixed
// with CFGTREE_, e.g. CFGTREE_LOG_LEVEL=debug.
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		cancel()
		os.Exit(1)
	}
}
