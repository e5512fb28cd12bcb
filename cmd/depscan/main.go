// Copyright 2026 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main implements the depscan CLI: a thin driver over
// pkg/scanner and pkg/manifest.
//
// Usage:
//
//	depscan scan [path] [--output json|yaml|table] [--out file]
//	depscan validate <manifest.json>
//	depscan schema
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags carries the flags every subcommand honors uniformly.
type GlobalFlags struct {
	JSON    bool
	Quiet   bool
	NoColor bool
	Verbose int
}

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
	)
	flag.Usage = printUsage
	flag.CommandLine.SetInterspersed(false)

	flag.Parse()

	if *showVersion {
		fmt.Printf("depscan version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "scan":
		runScan(cmdArgs)
	case "validate":
		runValidate(cmdArgs)
	case "schema":
		runSchema(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `depscan - Dependency Manifest Scanner

Usage:
  depscan <command> [options]

Commands:
  scan       Walk a repository and emit a Dependency Manifest
  validate   Validate an existing manifest document against the schema
  schema     Print the generated JSON Schema for the manifest document

Global Options:
  --version    Show version and exit

Examples:
  depscan scan .
  depscan scan . --output json --out manifest.json
  depscan validate manifest.json
  depscan schema > depscan.schema.json

`)
}
