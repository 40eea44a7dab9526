package llvm

import (
	"encoding/json"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/ztrue/tracerr"
)

// TypeInfoSymbol names the global that carries a module's TypeInfo.
const TypeInfoSymbol = "__smpl_types"

// TypeInfo describes what a compiled module defines. It is embedded as a
// NUL-terminated JSON string so tools can read it back from the object.
type TypeInfo struct {
	Functions map[string]string   `json:"functions"`
	Structs   map[string][]string `json:"structs"`
}

func registerTypeInfo(t TypeInfo, m *ir.Module) {
	data, err := json.Marshal(t)
	if err != nil {
		panic(err)
	}

	g := m.NewGlobalDef(TypeInfoSymbol, constant.NewCharArray(append(data, 0)))
	g.Immutable = true
}

func ParseTypeInfo(data string) (t TypeInfo, err error) {
	err = json.Unmarshal([]byte(data), &t)
	if err != nil {
		return TypeInfo{}, tracerr.Wrap(err)
	}
	return t, nil
}
