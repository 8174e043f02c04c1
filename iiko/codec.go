package iiko

import (
	"encoding/json"
	"encoding/xml"
)

func decodeXML(body string, v any) error {
	if err := xml.Unmarshal([]byte(body), v); err != nil {
		return serializationError("failed to decode XML response", err)
	}
	return nil
}

func encodeXML(v any) (string, error) {
	data, err := xml.Marshal(v)
	if err != nil {
		return "", serializationError("failed to encode XML request", err)
	}
	return string(data), nil
}

func decodeJSON(body string, v any) error {
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return serializationError("failed to decode JSON response", err)
	}
	return nil
}

func encodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", serializationError("failed to encode JSON request", err)
	}
	return string(data), nil
}
