package main

import (
	"errors"
	"log"
	"os"

	"github.com/linewatch/go-linewatch/boundary"
)

func main() {

	// disable logging timestamps
	log.SetFlags(0)

	if err := NewRootCommand().Execute(); err != nil {

		log.Printf("error: %v", err)

		// boundary configuration problems get their own exit code so a
		// supervisor can tell misconfiguration from runtime failure
		var cfgErr *boundary.ConfigError

		if errors.As(err, &cfgErr) {
			os.Exit(2)
		}

		os.Exit(1)
	}
}
