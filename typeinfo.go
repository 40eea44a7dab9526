package main

import (
	"github.com/pontaoski/smplc/backend/llvm"
	"github.com/pontaoski/smplc/reader"
	"github.com/ztrue/tracerr"
)

func getTypeInfoFromFile(f string) (llvm.TypeInfo, error) {
	data, err := reader.ReadSymbol(f, llvm.TypeInfoSymbol)
	if err != nil {
		return llvm.TypeInfo{}, tracerr.Wrap(err)
	}
	return llvm.ParseTypeInfo(data)
}
