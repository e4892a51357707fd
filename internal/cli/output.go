package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// writePayload prints an API payload as indented JSON or as YAML.
// Payloads that are not JSON are printed unchanged.
func writePayload(w io.Writer, format string, payload []byte) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if !json.Valid(payload) {
		_, err := fmt.Fprintln(w, string(payload))
		return err
	}

	switch format {
	case "yaml":
		out, err := toYAML(payload)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		var buf bytes.Buffer
		if err := json.Indent(&buf, payload, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		_, err := buf.WriteTo(w)
		return err
	}
}

// toYAML converts JSON to block style YAML, keeping the key order of the API response.
// JSON is valid YAML so the payload is decoded into a yaml.Node directly.
func toYAML(payload []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(payload, &node); err != nil {
		return nil, fmt.Errorf("converting response to yaml: %w", err)
	}
	clearStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("converting response to yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// clearStyle drops the flow style and quoting inherited from the JSON source.
// The encoder quotes strings again where needed to keep their type.
func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}
