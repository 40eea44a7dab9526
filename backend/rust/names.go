package rust

var keywords = map[string]bool{
	"as": true, "async": true, "await": true, "box": true, "break": true,
	"const": true, "continue": true, "dyn": true, "else": true, "enum": true,
	"extern": true, "false": true, "fn": true, "for": true, "if": true,
	"impl": true, "in": true, "let": true, "loop": true, "macro": true,
	"match": true, "mod": true, "move": true, "mut": true, "priv": true,
	"pub": true, "ref": true, "return": true, "static": true, "struct": true,
	"trait": true, "true": true, "try": true, "type": true, "typeof": true,
	"unsafe": true, "unsized": true, "use": true, "virtual": true, "where": true,
	"while": true, "yield": true, "abstract": true, "become": true, "do": true,
	"final": true, "override": true, "gen": true,
}

// these cannot be raw identifiers
var reserved = map[string]bool{
	"self": true, "Self": true, "super": true, "crate": true, "_": true,
}

// ident makes an smpl identifier usable as a Rust identifier.
func ident(name string) string {
	switch {
	case reserved[name]:
		return name + "_"
	case keywords[name]:
		return "r#" + name
	}
	return name
}
