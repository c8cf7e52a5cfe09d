package mimekit

import (
	"fmt"
	"sync"
)

// ProviderFactory is a function that creates a Provider from a config
type ProviderFactory func(cfg *Config) (Provider, error)

var (
	providerFactories = make(map[string]ProviderFactory)
	factoryMutex      sync.RWMutex
)

func init() {
	RegisterProvider("definitions", func(*Config) (Provider, error) {
		return NewDefinitionProvider(), nil
	})
}

// RegisterProvider registers a provider factory function
func RegisterProvider(name string, factory ProviderFactory) {
	factoryMutex.Lock()
	defer factoryMutex.Unlock()
	providerFactories[name] = factory
}

// CreateProvider creates a provider instance from config
func CreateProvider(cfg *Config) (Provider, error) {
	name := cfg.Provider
	if name == "" {
		name = "definitions"
	}

	factoryMutex.RLock()
	factory, exists := providerFactories[name]
	factoryMutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotRegistered, name)
	}

	return factory(cfg)
}
