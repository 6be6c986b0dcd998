package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema describes the config file format.
func Schema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}

// SchemaJSON is Schema rendered as indented JSON.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}
