package event

import (
	"encoding/hex"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// Payload text tagging. Binary payloads are stored as "hex:" plus a
// lowercase two-characters-per-byte encoding. Text payloads are stored
// verbatim, except text that itself starts with a tag prefix, which is
// escaped with "utf8:" so the two kinds stay distinguishable on read-back.
const (
	hexPrefix  = "hex:"
	textPrefix = "utf8:"
)

// senderKeys are the candidate identity fields scanned, in priority
// order, in a top-level JSON object payload.
var senderKeys = []string{"sender", "client_id", "clientId", "source", "from", "device_id"}

// DecodePayload renders raw message bytes as storable text. It is total:
// every byte sequence produces a valid result and the original bytes are
// recoverable with PayloadBytes.
func DecodePayload(raw []byte) (text string, binary bool) {
	if !utf8.Valid(raw) {
		return hexPrefix + hex.EncodeToString(raw), true
	}

	s := string(raw)
	if strings.HasPrefix(s, hexPrefix) || strings.HasPrefix(s, textPrefix) {
		return textPrefix + s, false
	}
	return s, false
}

// IsBinaryPayload reports whether stored payload text is hex-tagged
// binary, without decoding it.
func IsBinaryPayload(text string) bool {
	return strings.HasPrefix(text, hexPrefix)
}

// PayloadBytes recovers the original message bytes from stored payload
// text, reporting whether the payload was binary-origin.
func PayloadBytes(text string) ([]byte, bool, error) {
	if rest, ok := strings.CutPrefix(text, hexPrefix); ok {
		raw, err := hex.DecodeString(rest)
		if err != nil {
			return nil, false, err
		}
		return raw, true, nil
	}
	if rest, ok := strings.CutPrefix(text, textPrefix); ok {
		return []byte(rest), false, nil
	}
	return []byte(text), false, nil
}

// ExtractSender scans a decoded payload for a sender identity. Only a
// top-level JSON object is considered; the first candidate key present
// wins. Binary payloads, non-objects, malformed JSON, and objects with
// none of the keys yield "".
func ExtractSender(text string, binary bool) string {
	if binary || text == "" {
		return ""
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return ""
	}

	for _, key := range senderKeys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		return renderSender(raw)
	}
	return ""
}

// renderSender turns a JSON value into the stored sender string: JSON
// strings pass through unquoted, anything else keeps its compact JSON
// form (numbers, booleans, nested values).
func renderSender(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// Decode builds the payload and sender fields of a Record from raw
// message bytes.
func Decode(raw []byte) (payload string, binary bool, sender string) {
	payload, binary = DecodePayload(raw)
	sender = ExtractSender(payload, binary)
	return payload, binary, sender
}
