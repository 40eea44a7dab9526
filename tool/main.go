package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/alecthomas/participle"

	. "github.com/dave/jennifer/jen"
)

const typesPackage = "github.com/pontaoski/smplc/types"

type TypeDecls struct {
	Entries []*Entry `@@*`
}

type Entry struct {
	Sum  *SumDecl  `  @@`
	Node *NodeDecl `| @@`
}

// SumDecl is "type Name = | A | B ;", a closed interface over pointer cases.
type SumDecl struct {
	Name  string   `"type" @Ident "="`
	Cases []string `("|" @Ident)+ ";"`
}

// NodeDecl is "node A, B ;", structs that only need a Span method.
type NodeDecl struct {
	Names []string `"node" @Ident ("," @Ident)* ";"`
}

func GenerateDecls(pkgname string, t *TypeDecls) string {
	f := NewFile(pkgname)
	f.HeaderComment("Code generated by adtGen. DO NOT EDIT.")

	var spanned []string
	seen := map[string]bool{}
	addSpanned := func(name string) {
		if !seen[name] {
			seen[name] = true
			spanned = append(spanned, name)
		}
	}

	for _, entry := range t.Entries {
		if entry.Sum != nil {
			decl := entry.Sum
			f.Type().Id(decl.Name).Interface(
				Id("Node"),
				Id("is_" + decl.Name).Params(),
			)

			for _, it := range decl.Cases {
				f.Func().Params(Op("*").Id(it)).Id("is_" + decl.Name).Params().Block()
				addSpanned(it)
			}
		}
		if entry.Node != nil {
			for _, name := range entry.Node.Names {
				addSpanned(name)
			}
		}
	}

	for _, name := range spanned {
		f.Func().Params(Id("n").Op("*").Id(name)).Id("Span").Params().Qual(typesPackage, "Span").Block(
			Return(Id("n").Dot("Location")),
		)
	}

	return fmt.Sprintf("%#v", f)
}

func main() {
	parser := participle.MustBuild(&TypeDecls{})

	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "usage: adtGen <input.adt> <output.go> <package>")
		os.Exit(2)
	}

	in := os.Args[1]
	out := os.Args[2]
	pkgname := os.Args[3]

	inData, err := ioutil.ReadFile(in)
	if err != nil {
		panic(err)
	}

	ast := TypeDecls{}
	err = parser.ParseBytes(inData, &ast)
	if err != nil {
		panic(err)
	}

	err = ioutil.WriteFile(out, []byte(GenerateDecls(pkgname, &ast)), 0644)
	if err != nil {
		panic(err)
	}
}
