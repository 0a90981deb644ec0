package adapter

import (
	"encoding/json"
	"fmt"
)

// Encode serializes a message to JSON. Keys are kept as given and values keep their JSON types:
// integers of any width are written exactly, strings stay strings, and nested maps and slices
// keep their structure. Values with no JSON representation, such as NaN, are an error.
func Encode(message Message) ([]byte, error) {
	data, err := json.Marshal(map[string]interface{}(message))
	if err != nil {
		return nil, fmt.Errorf("encode: error serializing message: err=%v", err)
	}

	return data, nil
}
