//go:build wasip1

// Command wasm is the matcher module compiled as a WASI reactor:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o acwasm.wasm ./wasm
//
// Hosts call the exported functions directly; there is no main loop.
package main

import (
	"github.com/praetorian-inc/acwasm/pkg/memory"
	"github.com/praetorian-inc/acwasm/pkg/module"
)

var mod = module.New(memory.NewNative())

func main() {}
