//go:build js && wasm

package main

import (
	"context"
	"syscall/js"

	"github.com/voxelsplace/isonets/api"
	"github.com/voxelsplace/isonets/chunk"
)

func bytesFromJS(v js.Value) []byte {
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	return buf
}

func bytesToJS(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

// isonetsChunkGLB(configYAML, x, y, z) returns the chunk at (x, y, z) as .glb bytes.
func chunkGLB(this js.Value, args []js.Value) any {
	if len(args) < 4 {
		return js.ValueOf("usage: isonetsChunkGLB(configYAML, x, y, z)")
	}
	pos := chunk.Position{X: args[1].Int(), Y: args[2].Int(), Z: args[3].Int()}
	out, err := api.ChunkGLB([]byte(args[0].String()), pos)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func generatePack(this js.Value, args []js.Value) any {
	cfg := ""
	if len(args) > 0 && args[0].Type() == js.TypeString {
		cfg = args[0].String()
	}
	out, err := api.GeneratePack(context.Background(), []byte(cfg))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func pack2glb(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing pack bytes")
	}
	out, err := api.PackToGLB(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func main() {
	js.Global().Set("isonetsChunkGLB", js.FuncOf(chunkGLB))
	js.Global().Set("isonetsGenerate", js.FuncOf(generatePack))
	js.Global().Set("isonetsPack2GLB", js.FuncOf(pack2glb))
	select {}
}
