// Package main provides the srpgate CLI for enrolling users and
// authenticating against a srpgated service.
package main

import (
	"fmt"
	"os"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("srpgate version %s\n", version)
		os.Exit(0)
	}

	var err error
	switch command {
	case "enroll":
		err = runEnroll(args)
	case "login":
		err = runLogin(args)
	case "logout":
		err = runLogout(args)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `srpgate - CLI for the srpgate authentication service

Usage:
  srpgate <command> [flags]

Available Commands:
  enroll   Derive a salt and verifier for a user and store them in the registry
  login    Authenticate against a srpgated service and print the session token
  logout   Terminate a session

Global Flags:
  --help, -h      Show help information
  --version, -v   Show version information

Examples:
  # Enroll a user into a local registry directory
  srpgate enroll --registry /var/lib/srpgate/registry --username alice

  # Authenticate against a running service
  srpgate login --server https://gate.example.com:4430 --username alice

  # Terminate a session
  srpgate logout --server https://gate.example.com:4430 --token <token>

The password is read from the SRPGATE_PASSWORD environment variable if set,
otherwise from standard input.

For detailed help on a specific command, run:
  srpgate <command> --help

`)
}
