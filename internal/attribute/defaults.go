package attribute

import (
	"fmt"
	"math/big"
	"slices"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/bakito/tf-provider-gen/internal/schema"
)

const defaultsPackage = "github.com/hashicorp/terraform-plugin-framework/resource/schema/"

// Default is a schema default rendered as a framework default expression.
type Default struct {
	// Expr is the Go expression, e.g. stringdefault.StaticString("x").
	Expr string
	// Import is the package the expression needs.
	Import string
	Value  cty.Value
}

// UnmappableDefaultError is returned for a default that can not be expressed in the generated schema.
type UnmappableDefaultError struct {
	Value  any
	Reason string
}

func (e *UnmappableDefaultError) Error() string {
	return fmt.Sprintf("default %v can not be mapped: %s", e.Value, e.Reason)
}

// Default returns the default of a node, or nil if it has none.
func (m *Mapper) Default(id schema.NodeID) (*Default, error) {
	var raw any
	m.walk(id, func(n schema.Node) {
		if raw == nil {
			raw = n.Default
		}
	})
	if raw == nil {
		return nil, nil
	}

	t := m.Map(id).Type
	if !t.IsPrimitive() {
		return nil, &UnmappableDefaultError{Value: raw, Reason: fmt.Sprintf("%s attributes have no static default", t.Kind)}
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, &UnmappableDefaultError{Value: raw, Reason: err.Error()}
	}
	val, err := ctyjson.Unmarshal(data, t.CtyType())
	if err != nil {
		return nil, &UnmappableDefaultError{Value: raw, Reason: err.Error()}
	}
	if val.IsNull() {
		return nil, nil
	}

	d := &Default{Value: val, Import: defaultsPackage + lowerKind(t.Kind) + "default"}
	switch t.Kind {
	case KindString:
		s := val.AsString()
		if len(t.Enum) > 0 && !slices.Contains(t.Enum, s) {
			return nil, &UnmappableDefaultError{Value: raw, Reason: fmt.Sprintf("%q is not one of %v", s, t.Enum)}
		}
		d.Expr = fmt.Sprintf("stringdefault.StaticString(%s)", strconv.Quote(s))
	case KindInt64:
		bf := val.AsBigFloat()
		if !bf.IsInt() {
			return nil, &UnmappableDefaultError{Value: raw, Reason: "not an integer"}
		}
		i, acc := bf.Int64()
		if acc != big.Exact {
			return nil, &UnmappableDefaultError{Value: raw, Reason: "out of the int64 range"}
		}
		d.Expr = fmt.Sprintf("int64default.StaticInt64(%d)", i)
	case KindFloat64:
		f, _ := val.AsBigFloat().Float64()
		d.Expr = fmt.Sprintf("float64default.StaticFloat64(%s)", strconv.FormatFloat(f, 'g', -1, 64))
	case KindBool:
		d.Expr = fmt.Sprintf("booldefault.StaticBool(%t)", val.True())
	}
	return d, nil
}

func lowerKind(k Kind) string {
	switch k {
	case KindString:
		return "string"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindBool:
		return "bool"
	}
	return ""
}
