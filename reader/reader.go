// Package reader loads the type information symbol out of a compiled shared
// object.
package reader

import "github.com/coreos/pkg/dlopen"

import "C"

func ReadSymbol(from, name string) (string, error) {
	handle, err := dlopen.GetHandle([]string{from})
	if err != nil {
		return "", err
	}
	defer handle.Close()

	sym, err := handle.GetSymbolPointer(name)
	if err != nil {
		return "", err
	}

	return C.GoString((*C.char)(sym)), nil
}
