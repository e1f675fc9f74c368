// Command componentize-go builds WebAssembly components from Go programs
// and generates Go bindings for WIT worlds.
package main

import (
	"context"
	"os"
)

func main() {
	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(a.run(context.Background(), os.Args[1:]))
}
