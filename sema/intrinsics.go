package sema

import "github.com/pontaoski/smplc/modgraph"

// Intrinsic identifies a prelude builtin that every backend lowers directly.
type Intrinsic int

const (
	NotIntrinsic Intrinsic = iota
	Some
	None
	IsSome
	IsNone
	Unwrap
	Expect
	Map
)

// Intrinsics is the trusted table of builtin operations on Option. Only
// builtin fns declared in the prelude are matched against it.
var Intrinsics = map[string]Intrinsic{
	"some":    Some,
	"none":    None,
	"is_some": IsSome,
	"is_none": IsNone,
	"unwrap":  Unwrap,
	"expect":  Expect,
	"map":     Map,
}

func (i Intrinsic) String() string {
	for name, in := range Intrinsics {
		if in == i {
			return name
		}
	}
	return "not an intrinsic"
}

// OptionOpaque is the name of the prelude's optional value type.
const OptionOpaque = "Option"

// IsOption reports whether o is the prelude's Option constructor.
func IsOption(o *Opaque) bool {
	return o.Name == OptionOpaque && o.Module == modgraph.PreludeName
}

// OptionElem returns T when t is Option(type T).
func OptionElem(t Type) (Type, bool) {
	inst, ok := t.(*OpaqueInst)
	if !ok || !IsOption(inst.Opaque) || len(inst.Args) != 1 {
		return nil, false
	}
	return inst.Args[0], true
}
