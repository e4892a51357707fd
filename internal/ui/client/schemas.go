package client

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBaseURL = "https://tradebot.local/schemas/"

// request bodies with a schema are checked before they are sent; endpoints without one are sent as-is
var schemaFiles = map[Endpoint]string{
	EndpointJobs:    "job.json",
	EndpointTrade:   "trade.json",
	EndpointPredict: "predict.json",
	EndpointConfig:  "config.json",
	EndpointTrain:   "train.json",
}

// the embedded schemas never change, so they are compiled once and shared by all clients
var compiledSchemas = sync.OnceValues(func() (map[Endpoint]*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	schemas := make(map[Endpoint]*jsonschema.Schema, len(schemaFiles))

	for endpoint, file := range schemaFiles {
		content, err := schemaFS.ReadFile("schemas/" + file)
		if err != nil {
			return nil, fmt.Errorf("reading schema %s: %w", file, err)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(content))
		if err != nil {
			return nil, fmt.Errorf("schema %s is not valid JSON: %w", file, err)
		}
		if err := c.AddResource(schemaBaseURL+file, doc); err != nil {
			return nil, fmt.Errorf("adding schema %s: %w", file, err)
		}
		schema, err := c.Compile(schemaBaseURL + file)
		if err != nil {
			return nil, fmt.Errorf("invalid JSON Schema %s: %w", file, err)
		}
		schemas[endpoint] = schema
	}
	return schemas, nil
})

// validateBody checks a request body against the endpoint schema.
// The body is round-tripped through JSON so structs and maps are validated the same way.
func validateBody(endpoint Endpoint, body any) error {
	schemas, err := compiledSchemas()
	if err != nil {
		return NewLocalError(err, "loading request schemas")
	}

	schema, ok := schemas[endpoint]
	if !ok {
		return nil
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return NewLocalError(err, fmt.Sprintf("marshaling %s request", endpoint))
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return NewLocalError(err, fmt.Sprintf("decoding %s request", endpoint))
	}

	if err := schema.Validate(inst); err != nil {
		return &ClientError{
			Kind:    KindLocal,
			Message: fmt.Sprintf("invalid %s request: %s", endpoint, validationSummary(err)),
			Err:     err,
		}
	}
	return nil
}

// validationSummary collapses the multi-line validator output to the individual failures
func validationSummary(err error) string {
	var causes []string
	for _, line := range strings.Split(err.Error(), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "- ") {
			causes = append(causes, strings.TrimPrefix(line, "- "))
		}
	}
	if len(causes) == 0 {
		return err.Error()
	}
	return strings.Join(causes, "; ")
}
