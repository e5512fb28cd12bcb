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

package manifest

import (
	"encoding/json"
	"sync"

	ggjsonschema "github.com/google/jsonschema-go/jsonschema"
	"github.com/invopop/jsonschema"
)

var (
	schemaOnce     sync.Once
	schemaDoc      *jsonschema.Schema
	schemaJSON     []byte
	compiledSchema *ggjsonschema.Resolved
	schemaBuildErr error
)

// reflectSchema builds the JSON Schema (draft 2020-12) document for
// Manifest from its Go struct tags, once per process. Generating the
// schema from the types it describes (rather than hand-maintaining a
// parallel .json file) means the two can never drift.
func reflectSchema() {
	r := &jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: false,
		RequiredFromJSONSchemaTags: false,
	}
	schemaDoc = r.Reflect(&Manifest{})
	schemaDoc.Version = "https://json-schema.org/draft/2020-12/schema"

	b, err := json.Marshal(schemaDoc)
	if err != nil {
		schemaBuildErr = err
		return
	}
	schemaJSON = b

	var gs ggjsonschema.Schema
	if err := json.Unmarshal(b, &gs); err != nil {
		schemaBuildErr = err
		return
	}
	resolved, err := gs.Resolve(nil)
	if err != nil {
		schemaBuildErr = err
		return
	}
	compiledSchema = resolved
}

// Schema returns the generated JSON Schema document describing the
// Manifest shape. It is compiled once per process and shared by
// reference across callers.
func Schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(reflectSchema)
	return schemaDoc, schemaBuildErr
}

// SchemaJSON returns the generated schema document as JSON bytes,
// suitable for the `depscan schema` command or for publishing alongside
// the manifest documents a scan produces.
func SchemaJSON() ([]byte, error) {
	schemaOnce.Do(reflectSchema)
	return schemaJSON, schemaBuildErr
}

// validateAgainstCompiledSchema runs the compiled draft 2020-12 schema
// against a decoded JSON value. This is a secondary defense layer: the
// primary, issue-granular checks enforcing bounds live in
// validate.go so that validation failures carry a stable {path,
// message, keyword} shape; a schema-level rejection here is folded in
// as one additional issue rather than replacing that list.
func validateAgainstCompiledSchema(instance any) error {
	schemaOnce.Do(reflectSchema)
	if schemaBuildErr != nil {
		return schemaBuildErr
	}
	return compiledSchema.Validate(instance)
}
