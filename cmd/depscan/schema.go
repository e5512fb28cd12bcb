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

package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/depscan/internal/errors"
	"github.com/kraklabs/depscan/pkg/manifest"
)

// runSchema executes the 'schema' CLI command: print the generated
// JSON Schema document describing the Manifest shape.
func runSchema(args []string) {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	jsonOut := fs.Bool("json", false, "Wrap errors as JSON (the schema itself is always JSON)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: depscan schema

Prints the generated JSON Schema (draft 2020-12) describing the
Dependency Manifest document shape.
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	b, err := manifest.SchemaJSON()
	if err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot generate manifest schema",
			err.Error(),
			"This is a bug. Please report it",
			err,
		), *jsonOut)
	}

	os.Stdout.Write(b)
	fmt.Println()
}
