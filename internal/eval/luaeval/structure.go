package luaeval

import (
	"context"
	"strings"

	"github.com/dshills/dapcore/internal/adapter/variables"
)

// maxDetailElems caps how many members a computed description renders.
const maxDetailElems = 8

// TableStructure exposes a logical size for snapshotted Lua table objects:
// the number of entries, distinct from any raw field enumeration.
type TableStructure struct {
	engine *Engine
}

// NewTableStructure creates the provider backed by the given engine.
func NewTableStructure(e *Engine) *TableStructure {
	return &TableStructure{engine: e}
}

// Matches reports whether the value is a Lua table object.
func (p *TableStructure) Matches(v variables.Value) bool {
	obj, ok := v.(*variables.Object)
	return ok && obj.Type == "table"
}

// Size returns the entry count of a table object. It fails when the owning
// thread is no longer suspended.
func (p *TableStructure) Size(ctx context.Context, v variables.Value, threadID int64) (variables.Value, error) {
	if _, err := p.engine.suspendedThread(threadID); err != nil {
		return nil, err
	}
	obj, ok := v.(*variables.Object)
	if !ok {
		return nil, variables.ErrUnsupportedStructure
	}
	return variables.NewInt(len(obj.Fields)), nil
}

// ValueDetail computes a descriptive string for a value, rendering the
// leading members of tables. It fails when the owning thread is no longer
// suspended.
func (e *Engine) ValueDetail(ctx context.Context, v variables.Value, threadID int64) (string, error) {
	if _, err := e.suspendedThread(threadID); err != nil {
		return "", err
	}

	switch val := v.(type) {
	case *variables.Array:
		parts := make([]string, 0, maxDetailElems+1)
		for i := 0; i < val.Length() && i < maxDetailElems; i++ {
			parts = append(parts, val.Element(i).String())
		}
		if val.Length() > maxDetailElems {
			parts = append(parts, "...")
		}
		return "{" + strings.Join(parts, ", ") + "}", nil
	case *variables.Object:
		parts := make([]string, 0, maxDetailElems+1)
		for i, f := range val.Fields {
			if i == maxDetailElems {
				parts = append(parts, "...")
				break
			}
			parts = append(parts, f.Name+"="+f.Value.String())
		}
		return "{" + strings.Join(parts, ", ") + "}", nil
	default:
		return v.String(), nil
	}
}
