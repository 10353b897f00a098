// Package canonicalize provides deterministic JSON serialization for
// hashing and signing attested-log messages, following RFC 8785 (JSON
// Canonicalization Scheme) with two differences: object keys are
// ordered by UTF-8 bytes rather than UTF-16 code units (the two orders
// disagree only between characters U+E000–U+FFFF and characters above
// U+FFFF), and json.Number values are written as given rather than
// re-formatted to the shortest round-trip form. Neither difference
// affects the flat string-and-integer records with ASCII keys that
// pkg/logentry signs.
package canonicalize

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"unicode/utf8"
)

// Error reports a value that cannot be represented canonically: a
// non-finite float, a non-UTF-8 string, or a cyclic structure reachable
// through json.Marshal's own traversal. JCS's json.Marshal pre-pass
// replaces invalid UTF-8 with U+FFFD before any check runs, so only
// EncodeRecord reports non-UTF-8 strings.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("canonicalization: %s", e.Reason)
}

// JCS returns the RFC 8785 canonical JSON representation of v: map
// keys sorted lexicographically by UTF-8 bytes, HTML escaping
// disabled, and json.Number passed through verbatim so integers and
// decimals round-trip exactly instead of going through float64.
//
// v is first run through the standard library's own json.Marshal so
// struct tags, omitempty, and Marshaler implementations are honored
// exactly as they would be for any other caller; the result is then
// decoded back into Go's generic interface{} tree (with UseNumber, so
// no precision is lost) and walked by marshalValue to re-serialize it
// under RFC 8785's rules. This two-pass shape trades one extra
// allocation for never having to duplicate encoding/json's struct
// tag and embedding logic here.
func JCS(v interface{}) ([]byte, error) {
	intermediate, err := json.Marshal(v)
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("pre-marshal failed: %v", err)}
	}

	var generic interface{}
	decoder := json.NewDecoder(bytes.NewReader(intermediate))
	decoder.UseNumber()
	if err := decoder.Decode(&generic); err != nil {
		return nil, fmt.Errorf("jcs: intermediate decode failed: %w", err)
	}

	var buf bytes.Buffer
	if err := marshalValue(&buf, generic); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CanonicalHash returns the SHA-256 hex digest of the canonical JSON representation of v.
func CanonicalHash(v interface{}) (string, error) {
	b, err := JCS(v)
	if err != nil {
		return "", err
	}
	return HashBytes(b), nil
}

// HashBytes computes SHA-256 hash of raw bytes and returns hex string
func HashBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// JCSString returns the JCS canonical form as a string
func JCSString(v interface{}) (string, error) {
	data, err := JCS(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// marshalValue writes v's canonical encoding into buf. Unlike a
// bottom-up walk that returns a freshly allocated []byte per node and
// has its caller splice it in, every branch here writes straight into
// the one buffer the whole tree shares, so nesting depth costs no
// extra allocation.
func marshalValue(buf *bytes.Buffer, v interface{}) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case json.Number:
		buf.WriteString(t.String())
		return nil
	case string:
		return writeCanonicalString(buf, t)
	case []interface{}:
		return marshalArray(buf, t)
	case map[string]interface{}:
		return marshalObject(buf, t)
	default:
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			return &Error{Reason: "non-finite number cannot be canonicalized"}
		}
		return marshalFallback(buf, v)
	}
}

func marshalArray(buf *bytes.Buffer, items []interface{}) error {
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalValue(buf, item); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func marshalObject(buf *bytes.Buffer, obj map[string]interface{}) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonicalString(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := marshalValue(buf, obj[k]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// writeCanonicalString appends s to buf as a quoted, HTML-unescaped
// JSON string. It borrows encoding/json's escaping rules (for unicode
// control characters, quotes, backslashes) rather than reimplementing
// them, and trims the trailing newline json.Encoder always appends.
func writeCanonicalString(buf *bytes.Buffer, s string) error {
	if !utf8.ValidString(s) {
		return &Error{Reason: "string is not valid UTF-8"}
	}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}

// marshalFallback handles any decoded value JCS's own json.Marshal +
// UseNumber pass never actually produces (plain float64 only appears
// here if a caller hand-builds an interface{} tree bypassing JCS's
// json.Marshal front door). Kept as a safety net rather than a panic.
func marshalFallback(buf *bytes.Buffer, v interface{}) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return &Error{Reason: err.Error()}
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}

// Field is one member of a flat signable record — the sum type this
// log's signing path actually needs: a UTF-8 string or a 63-bit
// integer. There is deliberately no array, nested-object, or float
// branch: every signable view in pkg/logentry is a flat struct of
// strings plus a single int64 seq, so EncodeRecord never has to
// recurse, decode into interface{}, or guard against NaN/Inf the way
// JCS's general tree-walk must.
type Field struct {
	Key   string
	Value FieldValue
}

// FieldValue holds exactly one of a string or an int64.
type FieldValue struct {
	str   string
	num   int64
	isNum bool
}

// StringValue wraps a string field value.
func StringValue(s string) FieldValue { return FieldValue{str: s} }

// IntValue wraps an integer field value.
func IntValue(n int64) FieldValue { return FieldValue{num: n, isNum: true} }

// EncodeRecord renders fields as RFC 8785 canonical JSON: keys sorted
// lexicographically by UTF-8 bytes, same as JCS's object branch, but
// without ever routing through json.Marshal/Decode or the generic
// interface{} switch in marshalValue — the record's shape is already
// known, so there is nothing left to discover about it.
func EncodeRecord(fields []Field) ([]byte, error) {
	sorted := make([]Field, len(fields))
	copy(sorted, fields)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range sorted {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonicalString(&buf, f.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if f.Value.isNum {
			buf.WriteString(strconv.FormatInt(f.Value.num, 10))
		} else if err := writeCanonicalString(&buf, f.Value.str); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
