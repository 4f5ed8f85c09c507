package luaeval

import (
	"fmt"
	"sort"
	"strconv"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/dapcore/internal/adapter/variables"
)

// toValue converts a Lua value into the adapter's value model. Tables are
// snapshotted eagerly so later variables requests never touch the Lua state.
// visited breaks circular references.
func toValue(lv lua.LValue, visited map[*lua.LTable]bool) variables.Value {
	switch v := lv.(type) {
	case *lua.LNilType:
		return &variables.Void{Text: "nil"}
	case lua.LBool:
		if v {
			return &variables.Primitive{Type: "boolean", Text: "true"}
		}
		return &variables.Primitive{Type: "boolean", Text: "false"}
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return variables.NewInt(int(f))
		}
		return &variables.Primitive{Type: "number", Text: strconv.FormatFloat(f, 'g', -1, 64)}
	case lua.LString:
		return &variables.Primitive{Type: "string", Text: strconv.Quote(string(v))}
	case *lua.LTable:
		if visited[v] {
			return &variables.Primitive{Type: "table", Text: "{...}"}
		}
		visited[v] = true
		return tableToValue(v, visited)
	case *lua.LFunction:
		return &variables.Primitive{Type: "function", Text: fmt.Sprintf("function: %p", v)}
	case *lua.LUserData:
		return &variables.Primitive{Type: "userdata", Text: fmt.Sprintf("userdata: %p", v)}
	default:
		return &variables.Primitive{Type: lv.Type().String(), Text: lv.String()}
	}
}

// tableToValue converts a table: contiguous integer keys starting at 1 make
// an array, anything else an object with sorted member names.
func tableToValue(t *lua.LTable, visited map[*lua.LTable]bool) variables.Value {
	isArray := true
	maxN := 0
	count := 0
	t.ForEach(func(k, _ lua.LValue) {
		count++
		kn, ok := k.(lua.LNumber)
		if !ok {
			isArray = false
			return
		}
		n := int(kn)
		if float64(n) != float64(kn) || n <= 0 {
			isArray = false
			return
		}
		if n > maxN {
			maxN = n
		}
	})
	if count != maxN {
		isArray = false
	}

	if isArray && maxN > 0 {
		arr := &variables.Array{Type: "table", Text: fmt.Sprintf("table: %p", t)}
		arr.Elems = make([]variables.Value, maxN)
		for i := 1; i <= maxN; i++ {
			arr.Elems[i-1] = toValue(t.RawGetInt(i), visited)
		}
		return arr
	}

	obj := &variables.Object{Type: "table", Text: fmt.Sprintf("table: %p", t)}
	t.ForEach(func(k, v lua.LValue) {
		obj.Fields = append(obj.Fields, variables.NamedValue{
			Name:  k.String(),
			Value: toValue(v, visited),
		})
	})
	sort.Slice(obj.Fields, func(i, j int) bool { return obj.Fields[i].Name < obj.Fields[j].Name })
	return obj
}
