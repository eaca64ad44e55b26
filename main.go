// Package main is the entry point for the depfloor CLI application.
//
// depfloor raises the lower bounds of a Python project's dependencies to the
// oldest releases still inside a time-based support window.
package main

import "github.com/ajxudir/depfloor/cmd"

// main delegates all command parsing and execution to the cmd package.
func main() {
	cmd.Execute()
}
