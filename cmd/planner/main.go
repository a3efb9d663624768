// Command planner scores course bundles and recommends weekly schedules from
// the command line, using the same reference tables as the HTTP server.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
