package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes the namespace in the supported Lua subset, one assignment per
// line. Table entries use bracketed keys, so the output evaluates back to an
// equal namespace. An indent of zero writes each table on a single line;
// otherwise nested entries are indented by that many spaces.
func (ns *Namespace) Format(_ context.Context, w io.Writer, indent int) error {
	pad := ""
	if indent > 0 {
		pad = strings.Repeat(" ", indent)
	}

	var sb strings.Builder

	for name, v := range ns.All() {
		sb.WriteString(name)
		sb.WriteString(" = ")
		writeValue(&sb, v, pad, 0)
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

// writeValue renders v as a literal. An empty pad selects single-line output.
func writeValue(sb *strings.Builder, v Value, pad string, depth int) {
	switch v.kind {
	case KindNil:
		sb.WriteString("nil")

	case KindBoolean:
		sb.WriteString(strconv.FormatBool(v.b))

	case KindInteger:
		if v.i == math.MinInt64 {
			// The positive literal would overflow into a float.
			sb.WriteString("(-9223372036854775807 - 1)")

			return
		}

		sb.WriteString(strconv.FormatInt(v.i, 10))

	case KindFloat:
		sb.WriteString(formatFloat(v.f))

	case KindString:
		sb.WriteString(EncodeString(v.s))

	case KindTable:
		writeTable(sb, v.t, pad, depth)
	}
}

func writeTable(sb *strings.Builder, t *Table, pad string, depth int) {
	if t.Len() == 0 {
		sb.WriteString("{}")

		return
	}

	sb.WriteByte('{')

	first := true

	for k, v := range t.All() {
		if pad != "" {
			sb.WriteByte('\n')
			sb.WriteString(strings.Repeat(pad, depth+1))
		} else if !first {
			sb.WriteByte(' ')
		}

		first = false

		sb.WriteByte('[')
		writeValue(sb, k.Value(), "", 0)
		sb.WriteString("] = ")
		writeValue(sb, v, pad, depth+1)
		sb.WriteByte(',')
	}

	if pad != "" {
		sb.WriteByte('\n')
		sb.WriteString(strings.Repeat(pad, depth))
	}

	sb.WriteByte('}')
}

// FormatJSON writes the namespace as a JSON object to the writer.
func (ns *Namespace) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	data, err := json.Marshal(ns)
	if err != nil {
		return err
	}

	if indent > 0 {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", strings.Repeat(" ", indent)); err != nil {
			return err
		}

		data = buf.Bytes()
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes the namespace as YAML to the writer.
func (ns *Namespace) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent), yaml.IndentSequence(true))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, ns.yamlValue(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}
