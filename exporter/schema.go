// exporter/schema.go
package exporter

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/gewnthar/flightscrape/models"
	"github.com/gewnthar/flightscrape/utils"
)

//go:embed itinerary.schema.json
var itinerarySchemaJSON []byte

const itinerarySchemaURL = "itinerary.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func itinerarySchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(itinerarySchemaURL, bytes.NewReader(itinerarySchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("failed to load itinerary schema: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(itinerarySchemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("failed to compile itinerary schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// ValidateRecords checks the JSON form of records against the embedded
// itinerary schema. The returned error is a *jsonschema.ValidationError
// (wrapped) when a record does not conform.
func ValidateRecords(records []models.NormalizedItinerary) error {
	if records == nil {
		records = []models.NormalizedItinerary{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode records for validation: %w", err)
	}
	return ValidateJSON(data)
}

// ValidateJSON validates an encoded itinerary array.
func ValidateJSON(data []byte) error {
	schema, err := itinerarySchema()
	if err != nil {
		return err
	}

	var doc any
	if err := utils.DecodeJSON(data, &doc); err != nil {
		return fmt.Errorf("failed to decode records for validation: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("itineraries do not match schema: %w", err)
	}
	return nil
}
