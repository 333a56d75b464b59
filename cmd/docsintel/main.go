// Command docsintel is the entry point for the documentation intelligence
// engine's command line. All business logic lives in internal/; this file
// only wires cobra's Execute into main.
package main

import (
	cmd "github.com/rohmanhakim/docsintel/internal/cli"
)

func main() {
	cmd.Execute()
}
