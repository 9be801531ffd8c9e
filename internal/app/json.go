package app

import (
	"encoding/json"
	"errors"
)

var errEmptyDocument = errors.New("empty document")

// decodeJSON unmarshals a stored document, treating a blank value as an error.
func decodeJSON(data []byte, dst any) error {
	if len(data) == 0 {
		return errEmptyDocument
	}
	return json.Unmarshal(data, dst)
}
