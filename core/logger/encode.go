package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// encoder turns a finalized entry into one line without the trailing newline.
type encoder interface {
	encode(e *entry, order []string) ([]byte, error)
	// keepsFullRID reports whether the uncompacted rid is worth emitting.
	keepsFullRID() bool
}

type jsonEncoder struct{}

func (jsonEncoder) keepsFullRID() bool { return true }

func (jsonEncoder) encode(e *entry, order []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range e.keys(order) {
		data, err := json.Marshal(e.fields[k])
		if err != nil {
			return nil, fmt.Errorf("logger: encode %s: %w", k, err)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(k))
		buf.WriteByte(':')
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// kvEncoder writes key=value pairs, quoting values that contain spaces,
// control characters, '=' or '"'.
type kvEncoder struct{}

func (kvEncoder) keepsFullRID() bool { return false }

func (kvEncoder) encode(e *entry, order []string) ([]byte, error) {
	var buf bytes.Buffer
	for i, k := range e.keys(order) {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(k)
		buf.WriteByte('=')
		s := fmt.Sprint(e.fields[k])
		if strings.IndexFunc(s, needsQuote) >= 0 {
			s = strconv.Quote(s)
		}
		buf.WriteString(s)
	}
	return buf.Bytes(), nil
}

func needsQuote(r rune) bool {
	return r <= ' ' || r == '=' || r == '"'
}

func encoderFor(format string) encoder {
	if format == "kv" {
		return kvEncoder{}
	}
	return jsonEncoder{}
}
