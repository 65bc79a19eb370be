/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package pool

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testConfig = `
pools:
  - name: conn
    object_size: 128
    alignment: 8
    initial_capacity: 16
    max_capacity: 32
    guards: true
  - name: item
    object_size: 48
`

func TestParseConfig(t *testing.T) {
	require := require.New(t)
	cfg, err := ParseConfig([]byte(testConfig))
	require.NoError(err)
	require.Len(cfg.Pools, 2)

	conn := cfg.Pools[0]
	require.Equal("conn", conn.Name)
	require.Equal(128, conn.ObjectSize)
	require.Equal(8, conn.Alignment)
	require.Equal(16, conn.InitialCapacity)
	require.Equal(32, conn.MaxCapacity)
	require.NotNil(conn.Guards)
	require.True(*conn.Guards)

	item := cfg.Pools[1]
	require.Nil(item.Guards)
	require.Empty(item.Options())

	p, err := NewPoolFromConfig(conn, nil, nil)
	require.NoError(err)
	defer p.Destroy()
	s := p.Stats()
	require.Equal("conn", s.Name)
	require.Equal(16, s.FreeCapacity)
	require.True(s.Guarded)
	require.Equal(128+2*GuardWidth, s.BlockSize)

	// explicit options win
	p2, err := NewPoolFromConfig(conn, nil, nil, WithGuards(false))
	require.NoError(err)
	defer p2.Destroy()
	require.False(p2.Stats().Guarded)
}

func TestParseConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"not yaml":     "pools: [",
		"empty name":   "pools:\n  - object_size: 8\n",
		"duplicate":    "pools:\n  - name: a\n    object_size: 8\n  - name: a\n    object_size: 8\n",
		"zero size":    "pools:\n  - name: a\n",
		"negative cap": "pools:\n  - name: a\n    object_size: 8\n    max_capacity: -1\n",
		"wrong type":   "pools:\n  - name: a\n    object_size: big\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(data))
			require.ErrorIs(t, err, ErrInvalidArgument)
			require.Nil(t, cfg)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	require := require.New(t)
	path := filepath.Join(t.TempDir(), "pools.yaml")
	require.NoError(os.WriteFile(path, []byte(testConfig), 0600))

	cfg, err := LoadConfig(path)
	require.NoError(err)
	require.Len(cfg.Pools, 2)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(err, os.ErrNotExist)
}
