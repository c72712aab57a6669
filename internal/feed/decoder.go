package feed

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"
)

// Decode turns one raw base64 frame into a Message.
//
// Frames normally arrive deflate-compressed, but the provider also
// pushes small frames uncompressed, so decompression failure falls
// back to parsing the base64 payload directly. A nil Message with a
// non-nil error means the frame is unusable; callers drop it and keep
// reading, a bad frame is never fatal to the stream.
func Decode(raw string) (*Message, error) {
	payload, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		// Some frames arrive without padding.
		payload, err = base64.RawStdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("base64 decode: %w", err)
		}
	}

	if msg, err := parseJSON(inflate(payload)); err == nil {
		return msg, nil
	}

	msg, err := parseJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("parse frame: %w", err)
	}
	return msg, nil
}

// inflate decompresses a deflate stream, returning nil on any failure
// so the caller falls through to the uncompressed path.
func inflate(payload []byte) []byte {
	r := flate.NewReader(bytes.NewReader(payload))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil
	}
	return out
}

func parseJSON(payload []byte) (*Message, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	if !utf8.Valid(payload) {
		return nil, fmt.Errorf("payload is not valid UTF-8")
	}
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
