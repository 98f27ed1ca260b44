// Command collidergen runs the collision proxy generator over scene files
// outside the desktop app.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
