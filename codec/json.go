package codec

import (
	"bytes"
	"encoding/json"
)

// JSON is the standard-library JSON codec. Map keys are sorted, so equal
// values always encode to equal bytes.
type JSON struct {
	// Indent pretty-prints with the given prefix when non-empty.
	Indent string
}

// Marshal encodes the value to JSON.
func (c JSON) Marshal(v any) ([]byte, error) {
	if c.Indent == "" {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", c.Indent)
}

// Unmarshal decodes the JSON data into v. Numbers are kept as
// json.Number when decoding into interfaces.
func (JSON) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the codec used by the native format.
var Default Codec = JSON{Indent: "  "}
