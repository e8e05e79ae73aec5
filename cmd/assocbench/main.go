// Command assocbench drives a Map through a configurable workload and reports
// timings, memory and per-operation counters.
package main

import (
	"log"
	"os"

	"github.com/jessevdk/go-flags"
)

func main() {
	opts := &Options{}

	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}

	if err := run(opts, os.Stdout); err != nil {
		log.Fatalf("assocbench: %v", err)
	}
}
