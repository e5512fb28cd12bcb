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
	"encoding/json"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/depscan/internal/errors"
	"github.com/kraklabs/depscan/internal/ui"
	"github.com/kraklabs/depscan/pkg/manifest"
)

// runValidate executes the 'validate' CLI command: decode a manifest
// document from a file (or stdin) and run it through pkg/manifest.Validate,
// independent of any scan.
func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	jsonOut := fs.Bool("json", false, "Output the validation result as JSON")
	noColor := fs.Bool("no-color", false, "Disable colored output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: depscan validate <manifest.json>

Validates a Dependency Manifest document against the schema without
re-running a scan. Reads from stdin when no path is given.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	globals := GlobalFlags{JSON: *jsonOut, NoColor: *noColor}
	ui.InitColors(globals.NoColor)

	var r = os.Stdin
	if rest := fs.Args(); len(rest) > 0 {
		f, err := os.Open(rest[0])
		if err != nil {
			errors.FatalError(errors.NewNotFoundError(
				"Cannot open manifest file",
				err.Error(),
				"Check the path passed to depscan validate",
			), globals.JSON)
		}
		defer f.Close()
		r = f
	}

	var m manifest.Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		errors.FatalError(errors.NewInputError(
			"Cannot parse manifest document",
			err.Error(),
			"Pass a JSON document matching the schema from depscan schema",
		), globals.JSON)
	}

	verr := manifest.Validate(&m)
	if verr != nil {
		if globals.JSON {
			_ = json.NewEncoder(os.Stdout).Encode(struct {
				Valid  bool             `json:"valid"`
				Issues []manifest.Issue `json:"issues"`
			}{Valid: false, Issues: verr.Issues})
		} else {
			ui.Errorf("manifest is invalid: %s", verr.Message)
			for _, issue := range verr.Issues {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", issue.Path, issue.Message)
			}
		}
		errors.FatalError(errors.NewValidationError(
			"Manifest failed validation",
			verr.Message,
			"See the issues listed above for every failing field",
			verr,
		), globals.JSON)
	}

	if globals.JSON {
		_ = json.NewEncoder(os.Stdout).Encode(struct {
			Valid bool `json:"valid"`
		}{Valid: true})
	} else {
		ui.Success("Manifest is valid")
	}
}
