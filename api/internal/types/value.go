package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind tags the shape held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindList
	KindMap
	KindDecimal
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindDecimal:
		return "decimal"
	default:
		return "null"
	}
}

// Value is a result value as reported by the model: a number, a string, a
// list, a mapping, or (after financial post-processing) an exact decimal.
type Value struct {
	Kind    Kind
	Number  float64
	Str     string
	List    []Value
	Map     map[string]Value
	Decimal decimal.Decimal
}

func Number(f float64) Value          { return Value{Kind: KindNumber, Number: f} }
func String(s string) Value           { return Value{Kind: KindString, Str: s} }
func List(vs ...Value) Value          { return Value{Kind: KindList, List: vs} }
func Map(m map[string]Value) Value    { return Value{Kind: KindMap, Map: m} }
func Decimal(d decimal.Decimal) Value { return Value{Kind: KindDecimal, Decimal: d} }
func (v Value) IsNull() bool          { return v.Kind == KindNull }
func (v Value) IsNumeric() bool       { return v.Kind == KindNumber || v.Kind == KindDecimal }

// FromAny converts a decoded JSON value into a Value. Every numeric form
// (json.Number, float, int) becomes a float64 number.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Value{}
	case Value:
		return t
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return Number(f)
		}
		return String(t.String())
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case decimal.Decimal:
		return Decimal(t)
	case string:
		return String(t)
	case bool:
		return String(strconv.FormatBool(t))
	case []any:
		out := make([]Value, 0, len(t))
		for _, el := range t {
			out = append(out, FromAny(el))
		}
		return List(out...)
	case map[string]any:
		out := make(map[string]Value, len(t))
		for k, el := range t {
			out[k] = FromAny(el)
		}
		return Map(out)
	default:
		return String(fmt.Sprint(t))
	}
}

// Float returns the numeric content of v.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Number, true
	case KindDecimal:
		f, _ := v.Decimal.Float64()
		return f, true
	}
	return 0, false
}

// String renders v for display: integral numbers drop their fraction,
// containers use JSON-like brackets with ", " separators.
func (v Value) String() string {
	if v.Kind == KindString {
		return v.Str
	}
	var b strings.Builder
	v.write(&b)
	return b.String()
}

func (v Value) write(b *strings.Builder) {
	switch v.Kind {
	case KindNull:
	case KindNumber:
		b.WriteString(formatFloat(v.Number))
	case KindDecimal:
		b.WriteString(v.Decimal.String())
	case KindString:
		b.WriteString(strconv.Quote(v.Str))
	case KindList:
		b.WriteByte('[')
		for i, el := range v.List {
			if i > 0 {
				b.WriteString(", ")
			}
			el.write(b)
		}
		b.WriteByte(']')
	case KindMap:
		b.WriteByte('{')
		for i, k := range v.sortedKeys() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			v.Map[k].write(b)
		}
		b.WriteByte('}')
	}
}

func (v Value) sortedKeys() []string {
	keys := make([]string, 0, len(v.Map))
	for k := range v.Map {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Interface converts v back into plain Go values (float64, string, []any,
// map[string]any). Decimals are returned as decimal.Decimal.
func (v Value) Interface() any {
	switch v.Kind {
	case KindNumber:
		return v.Number
	case KindDecimal:
		return v.Decimal
	case KindString:
		return v.Str
	case KindList:
		out := make([]any, len(v.List))
		for i, el := range v.List {
			out[i] = el.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.Map))
		for k, el := range v.Map {
			out[k] = el.Interface()
		}
		return out
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindNumber:
		return []byte(formatFloat(v.Number)), nil
	case KindDecimal:
		// exact digits as a JSON number
		return []byte(v.Decimal.String()), nil
	case KindString:
		return json.Marshal(v.Str)
	case KindList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	case KindMap:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range v.sortedKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := v.Map[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("value: unknown kind %d", v.Kind)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return err
	}
	*v = FromAny(x)
	return nil
}
