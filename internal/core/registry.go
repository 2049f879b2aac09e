package core

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var (
	registry   = make(map[string]SourceDefinition)
	registryMu sync.RWMutex
)

// Register adds a source definition to the registry.
// Panics if a definition with the same key is already registered.
func Register(def SourceDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Key]; exists {
		panic(fmt.Sprintf("source kind already registered: %s", def.Info.Key))
	}
	if def.Shape == nil {
		panic(fmt.Sprintf("source kind %s has no shape function", def.Info.Key))
	}

	registry[def.Info.Key] = def
}

// Get returns a source definition by key.
// Returns false if not found.
func Get(key string) (SourceDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// ForFile returns the source definition registered for the file's extension.
// Returns false if no definition claims the extension.
func ForFile(name string) (SourceDefinition, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return SourceDefinition{}, false
	}

	for _, def := range All() {
		for _, e := range def.Info.Extensions {
			if strings.EqualFold(e, ext) {
				return def, true
			}
		}
	}
	return SourceDefinition{}, false
}

// All returns all registered source definitions sorted by key.
func All() []SourceDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]SourceDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Info.Key < result[j].Info.Key
	})

	return result
}

// Kinds returns display information for all registered source kinds.
func Kinds() []SourceInfo {
	defs := All()
	infos := make([]SourceInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// KindCount returns the number of registered source kinds.
func KindCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered source kinds.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]SourceDefinition)
}
