package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// decodeObject reads a JSON object body into dst. An empty body leaves dst
// untouched. Anything but whitespace after the first value is rejected.
func decodeObject(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return badBody(err)
	}
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after JSON value")
		}
		return badBody(err)
	}
	return nil
}

func badBody(err error) *Error {
	return &Error{Status: http.StatusBadRequest, Message: "invalid JSON body: " + err.Error(), Err: err}
}
