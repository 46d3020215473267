package settings

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed providers.yaml
var providersYAML []byte

// Provider describes one answering provider and the settings keys it reads.
type Provider struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	KeyField      string   `yaml:"key_field"`
	EndpointField string   `yaml:"endpoint_field"`
	ModelField    string   `yaml:"model_field"`
	DefaultModel  string   `yaml:"default_model"`
	Models        []string `yaml:"models"`
}

type providerFile struct {
	Providers []Provider `yaml:"providers"`
}

// ParseProviders decodes a provider catalog.
func ParseProviders(data []byte) ([]Provider, error) {
	var f providerFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse providers: %w", err)
	}
	seen := make(map[string]bool, len(f.Providers))
	for _, p := range f.Providers {
		if p.ID == "" {
			return nil, fmt.Errorf("parse providers: entry without id")
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("parse providers: duplicate id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return f.Providers, nil
}

var builtinProviders = mustParse(providersYAML)

func mustParse(data []byte) []Provider {
	p, err := ParseProviders(data)
	if err != nil {
		panic(err)
	}
	return p
}

// Providers returns the built-in provider catalog in display order.
func Providers() []Provider {
	return append([]Provider(nil), builtinProviders...)
}

// ProviderIDs returns the known provider ids in display order.
func ProviderIDs() []string {
	ids := make([]string, len(builtinProviders))
	for i, p := range builtinProviders {
		ids[i] = p.ID
	}
	return ids
}

// LookupProvider finds a provider by id.
func LookupProvider(id string) (Provider, bool) {
	for _, p := range builtinProviders {
		if p.ID == id {
			return p, true
		}
	}
	return Provider{}, false
}

// NextProvider returns the provider after id, wrapping around.
func NextProvider(id string) string {
	ids := ProviderIDs()
	for i, p := range ids {
		if p == id {
			return ids[(i+1)%len(ids)]
		}
	}
	return ids[0]
}
