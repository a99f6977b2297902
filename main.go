package main

import (
	"edaproxy/cmd" // Import the cmd package which contains the proxy and admin CLI
)

// main is the program entry point.
// It delegates to cmd.Execute() which decides from argv[0] what the binary is.
//
// edaproxy is a transparent remote-execution proxy for EDA tools:
//   - One binary is symlinked under many tool names (vcs, verdi, dc_shell, ...)
//   - Invoked as a tool name, it builds a remote command (whitelisted env exports,
//     module loads, a cd to the caller's directory, the tool and its arguments)
//     and runs it on the EDA host over ssh, with a pseudo-terminal when stdin is one
//   - The remote exit code becomes the local exit code; an interrupt yields 130
//   - Invoked as edaproxy, it is a small admin CLI to sync the symlinks and inspect
//     the configuration and payloads
func main() {
	cmd.Execute()
}
