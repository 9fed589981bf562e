package lang

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/goccy/go-yaml"
)

// MarshalJSON encodes the namespace as an object keyed by variable name.
func (ns *Namespace) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	first := true

	for name, v := range ns.All() {
		if !first {
			buf.WriteByte(',')
		}

		first = false

		if err := writeJSONString(&buf, name); err != nil {
			return nil, err
		}

		buf.WriteByte(':')

		if err := writeJSON(&buf, v); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// MarshalJSON encodes v. Tables whose keys are exactly 1 through n become
// arrays; other tables become objects with keys rendered as strings.
// Non-finite floats encode as null.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case KindNil:
		buf.WriteString("null")

	case KindBoolean:
		buf.WriteString(strconv.FormatBool(v.b))

	case KindInteger:
		buf.WriteString(strconv.FormatInt(v.i, 10))

	case KindFloat:
		if math.IsInf(v.f, 0) || math.IsNaN(v.f) {
			buf.WriteString("null")

			return nil
		}

		data, err := json.Marshal(v.f)
		if err != nil {
			return err
		}

		buf.Write(data)

	case KindString:
		return writeJSONString(buf, v.s)

	case KindTable:
		return writeJSONTable(buf, v.t)
	}

	return nil
}

func writeJSONTable(buf *bytes.Buffer, t *Table) error {
	if seq, ok := t.Sequence(); ok {
		buf.WriteByte('[')

		for i, e := range seq {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := writeJSON(buf, e); err != nil {
				return err
			}
		}

		buf.WriteByte(']')

		return nil
	}

	buf.WriteByte('{')

	first := true

	for k, e := range t.All() {
		if !first {
			buf.WriteByte(',')
		}

		first = false

		if err := writeJSONString(buf, keyText(k)); err != nil {
			return err
		}

		buf.WriteByte(':')

		if err := writeJSON(buf, e); err != nil {
			return err
		}
	}

	buf.WriteByte('}')

	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	buf.Write(data)

	return nil
}

// keyText renders a key for formats whose keys are strings.
func keyText(k Key) string {
	switch v := k.Value(); v.kind {
	case KindString:
		return v.s
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// yamlValue converts the namespace into an ordered YAML mapping.
func (ns *Namespace) yamlValue() yaml.MapSlice {
	m := make(yaml.MapSlice, 0, ns.Len())

	for name, v := range ns.All() {
		m = append(m, yaml.MapItem{Key: name, Value: yamlValue(v)})
	}

	return m
}

// yamlValue converts v into values the YAML encoder preserves in order:
// sequences for 1..n tables and ordered mappings for the rest.
func yamlValue(v Value) any {
	if v.kind != KindTable {
		return v.Native()
	}

	if seq, ok := v.t.Sequence(); ok {
		out := make([]any, len(seq))
		for i, e := range seq {
			out[i] = yamlValue(e)
		}

		return out
	}

	m := make(yaml.MapSlice, 0, v.t.Len())

	for k, e := range v.t.All() {
		m = append(m, yaml.MapItem{Key: k.Value().Native(), Value: yamlValue(e)})
	}

	return m
}
