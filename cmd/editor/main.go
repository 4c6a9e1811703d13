// Command editor drives an email-builder editing session from the terminal:
// it resolves the starting document the way the browser editor does, uploads
// images into it and saves it back to the host application.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
