/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package pool

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes the pools a server needs, e.g.
//
//	pools:
//	  - name: conn
//	    object_size: 128
//	    max_capacity: 1024
//	    guards: true
type Config struct {
	Pools []PoolConfig `yaml:"pools"`
}

type PoolConfig struct {
	Name            string `yaml:"name"`
	ObjectSize      int    `yaml:"object_size"`
	Alignment       int    `yaml:"alignment,omitempty"`
	InitialCapacity int    `yaml:"initial_capacity,omitempty"`
	MaxCapacity     int    `yaml:"max_capacity,omitempty"`
	// nil means the build default, see WithGuards()
	Guards *bool `yaml:"guards,omitempty"`
}

// ParseConfig parses and validates yaml pool definitions
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %w", ErrInvalidArgument, err)
	}
	names := map[string]struct{}{}
	for i, pc := range cfg.Pools {
		if len(pc.Name) == 0 {
			return nil, fmt.Errorf("%w: pools[%d]: empty name", ErrInvalidArgument, i)
		}
		if _, ok := names[pc.Name]; ok {
			return nil, fmt.Errorf("%w: pools[%d]: duplicate pool %q", ErrInvalidArgument, i, pc.Name)
		}
		names[pc.Name] = struct{}{}
		if pc.ObjectSize <= 0 {
			return nil, fmt.Errorf("%w: pool %q: object_size must be positive", ErrInvalidArgument, pc.Name)
		}
		if pc.InitialCapacity < 0 || pc.MaxCapacity < 0 {
			return nil, fmt.Errorf("%w: pool %q: negative capacity", ErrInvalidArgument, pc.Name)
		}
	}
	return cfg, nil
}

// LoadConfig reads yaml pool definitions from the file
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// Options converts the definition to pool options. Zero values keep defaults
func (pc PoolConfig) Options() []Option {
	var opts []Option
	if pc.InitialCapacity > 0 {
		opts = append(opts, WithInitialCapacity(pc.InitialCapacity))
	}
	if pc.MaxCapacity > 0 {
		opts = append(opts, WithMaxCapacity(pc.MaxCapacity))
	}
	if pc.Guards != nil {
		opts = append(opts, WithGuards(*pc.Guards))
	}
	return opts
}

// NewPoolFromConfig creates a pool by its definition
// opts are applied after the ones from the definition
func NewPoolFromConfig(pc PoolConfig, constructor Constructor, destructor Destructor, opts ...Option) (IPool, error) {
	return NewPool(pc.Name, pc.ObjectSize, pc.Alignment, constructor, destructor, append(pc.Options(), opts...)...)
}
