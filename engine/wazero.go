package engine

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/lexconv"
)

// DefaultPages is the memory size of NewMemory when pages is 0.
const DefaultPages = 1

const memoryExport = "memory"

// Engine owns a wazero runtime.
type Engine struct {
	runtime wazero.Runtime
}

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	MemoryLimitPages uint32
}

// New creates a new wazero-based engine
func New(ctx context.Context, cfg *Config) (*Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	return &Engine{runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg)}, nil
}

// Close releases the runtime and every memory created from it.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// NewMemory instantiates an anonymous guest module that exports a single
// linear memory of the given number of pages.
func (e *Engine) NewMemory(ctx context.Context, pages uint32) (*WazeroMemory, error) {
	if pages == 0 {
		pages = DefaultPages
	}
	mod, err := e.runtime.InstantiateWithConfig(ctx, memoryModule(pages), wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, fmt.Errorf("instantiate memory module: %w", err)
	}
	mem := mod.ExportedMemory(memoryExport)
	if mem == nil {
		_ = mod.Close(ctx)
		return nil, fmt.Errorf("memory module exports no %q", memoryExport)
	}
	Logger().Debug("guest memory created", zap.Uint32("pages", pages), zap.Uint32("bytes", mem.Size()))
	return &WazeroMemory{mem: mem, mod: mod}, nil
}

// memoryModule encodes a core module with one memory of min pages, exported
// as "memory".
func memoryModule(pages uint32) []byte {
	b := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	var mem []byte
	mem = append(mem, 0x01, 0x00) // one memory, limits without max
	mem = binary.AppendUvarint(mem, uint64(pages))
	b = appendSection(b, 0x05, mem)

	var exp []byte
	exp = append(exp, 0x01, byte(len(memoryExport)))
	exp = append(exp, memoryExport...)
	exp = append(exp, 0x02, 0x00) // memory index 0
	return appendSection(b, 0x07, exp)
}

func appendSection(b []byte, id byte, payload []byte) []byte {
	b = append(b, id)
	b = binary.AppendUvarint(b, uint64(len(payload)))
	return append(b, payload...)
}

// WazeroMemory wraps wazero memory to implement lexconv.Memory
type WazeroMemory struct {
	mem api.Memory
	mod api.Module
}

// Close releases the guest module backing the memory.
func (m *WazeroMemory) Close(ctx context.Context) error {
	if m.mod == nil {
		return nil
	}
	return m.mod.Close(ctx)
}

func (m *WazeroMemory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("read out of bounds: offset=%d, length=%d", offset, length)
	}
	return data, nil
}

func (m *WazeroMemory) Write(offset uint32, data []byte) error {
	ok := m.mem.Write(offset, data)
	if !ok {
		return fmt.Errorf("write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

func (m *WazeroMemory) Size() uint32 {
	if m.mem == nil {
		return 0
	}
	return m.mem.Size()
}

// Compile-time check that WazeroMemory implements lexconv.Memory and MemorySizer
var _ lexconv.Memory = (*WazeroMemory)(nil)
var _ lexconv.MemorySizer = (*WazeroMemory)(nil)
