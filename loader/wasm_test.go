package loader

import (
	"context"
	"testing"
)

// emptyModule is the smallest valid core wasm binary: magic + version.
var emptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func TestWASMExtractor_Module(t *testing.T) {
	ctx := context.Background()
	w := NewWASMExtractor(ctx)
	defer w.Close(ctx)

	objects, closer, err := w.Extract("mod.wasm", emptyModule)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if objects[0] == nil {
		t.Fatal("object 0 should be the instantiated module")
	}
	if len(objects) != 1 {
		t.Fatalf("empty module should expose no functions, got %d objects", len(objects))
	}
	if closer == nil {
		t.Fatal("wasm extraction should return a closer")
	}
	closer()
}

func TestWASMExtractor_InvalidBinary(t *testing.T) {
	ctx := context.Background()
	w := NewWASMExtractor(ctx)
	defer w.Close(ctx)

	if _, _, err := w.Extract("bad.wasm", []byte("not wasm")); err == nil {
		t.Fatal("invalid binary should fail extraction")
	}
}

func TestWASMExtractor_Fallback(t *testing.T) {
	ctx := context.Background()
	w := NewWASMExtractor(ctx)
	defer w.Close(ctx)

	objects, _, err := w.Extract("plain.bin", []byte("raw"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if string(objects[0].([]byte)) != "raw" {
		t.Fatalf("fallback payload = %v", objects[0])
	}
}

func TestWASMExtractor_SameModuleTwice(t *testing.T) {
	ctx := context.Background()
	w := NewWASMExtractor(ctx)
	defer w.Close(ctx)

	// Two files with the same path must not collide on instance names.
	if _, _, err := w.Extract("dup.wasm", emptyModule); err != nil {
		t.Fatalf("first extract: %v", err)
	}
	if _, _, err := w.Extract("dup.wasm", emptyModule); err != nil {
		t.Fatalf("second extract: %v", err)
	}
}
