// Package config holds the emitter settings that can be supplied as a JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"

	"jitgen/internal/emit"
)

// Config represents configuration for the jitgen tool
type Config struct {
	Debug     bool   `json:"debug,omitempty" jsonschema:"title=Debug,description=Enable debug logging"`
	Header    string `json:"header,omitempty" jsonschema:"title=Header,description=Header included at the top of the generated table,default=chunks.h"`
	Table     string `json:"table,omitempty" jsonschema:"title=Table,description=Name of the generated array,default=chunk_table"`
	Type      string `json:"type,omitempty" jsonschema:"title=Record Type,description=Element type of the generated array,default=jit_chunk_t"`
	Namespace string `json:"namespace,omitempty" jsonschema:"title=Namespace,description=C++ namespace wrapping the table (empty for none)"`
	Verify    bool   `json:"verify,omitempty" jsonschema:"title=Verify,description=Decode the emitted rows and compare them with the chunk payloads"`
}

// Load reads a JSON config file. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var c Config
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &c, nil
}

// EmitOptions returns the emitter settings, empty fields left to emit defaults.
func (c *Config) EmitOptions() emit.Options {
	return emit.Options{
		Header:    c.Header,
		Table:     c.Table,
		Type:      c.Type,
		Namespace: c.Namespace,
	}
}

// Schema returns the indented JSON schema of Config.
func Schema() ([]byte, error) {
	reflector := new(jsonschema.Reflector)
	bts, err := json.MarshalIndent(reflector.Reflect(&Config{}), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return bts, nil
}
