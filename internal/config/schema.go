package config

import (
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-scanner/internal/engine"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

// GenerateSchema generates the JSON schema of the configuration file.
func GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,
		AllowAdditionalProperties: false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch t.String() {
			case "optional.Option[time.Time]":
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			case "time.Duration":
				return &jsonschema.Schema{
					Type:        "string",
					Description: "Go duration such as 30m or 12h",
				}
			case "engine.Schedule":
				return &jsonschema.Schema{
					Type: "string",
					Enum: engine.AllSchedules,
				}
			case "types.Frequency":
				return &jsonschema.Schema{
					Type: "string",
					Enum: []any{"daily", "weekly"},
				}
			}

			return nil
		},
	}

	//nolint:exhaustruct // Empty struct is intentional for schema generation
	schema := reflector.Reflect(&Config{})
	schema.Title = "argo-scanner-config"
	schema.Description = "Configuration schema for the argo scanner"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON renders GenerateSchema as indented JSON.
func GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(GenerateSchema(), "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to marshal schema", err)
	}

	return string(schemaBytes), nil
}
