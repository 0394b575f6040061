// Command foodgramctl runs operator tasks against the Foodgram database.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
