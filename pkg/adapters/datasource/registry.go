package datasource

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ekaya-inc/heritage-importer/pkg/apperrors"
)

// DialectInfo describes a registered target dialect.
type DialectInfo struct {
	Type        string `json:"type"`         // "mysql", "postgres", "sqlserver"
	DisplayName string `json:"display_name"` // "MySQL", "PostgreSQL"
	Description string `json:"description"`
	DefaultPort int    `json:"default_port"`
}

// DialectRegistration contains info + factory for creating a dialect.
type DialectRegistration struct {
	Info    DialectInfo
	Factory func(config map[string]any) (Dialect, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]DialectRegistration)
)

// Register is called by each dialect's init() function.
// Thread-safe for concurrent init() calls.
func Register(reg DialectRegistration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Info.Type] = reg
}

// RegisteredDialects returns info for all registered dialects, sorted by type.
func RegisteredDialects() []DialectInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]DialectInfo, 0, len(registry))
	for _, reg := range registry {
		result = append(result, reg.Info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Type < result[j].Type })
	return result
}

// GetFactory returns the factory for a dialect type.
// Returns nil if type is not registered.
func GetFactory(dialectType string) func(config map[string]any) (Dialect, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if reg, ok := registry[dialectType]; ok {
		return reg.Factory
	}
	return nil
}

// IsRegistered checks if a dialect type is available.
func IsRegistered(dialectType string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[dialectType]
	return ok
}

// New creates the dialect registered under dialectType.
func New(dialectType string, config map[string]any) (Dialect, error) {
	factory := GetFactory(dialectType)
	if factory == nil {
		return nil, fmt.Errorf("unsupported target driver %q: %w", dialectType, apperrors.ErrNotFound)
	}
	return factory(config)
}
