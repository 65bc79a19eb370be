/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDoubleFree_Unguarded(t *testing.T) {
	require := require.New(t)
	p, err := NewPool("wrong", 32, 0, nil, nil, WithGuards(false))
	require.NoError(err)
	defer p.Destroy()

	wrong, err := p.Alloc()
	require.NoError(err)
	require.NoError(p.Free(wrong))
	// problem: freed twice -> the same block is in the free list twice
	require.NoError(p.Free(wrong))

	new1, err := p.Alloc()
	require.NoError(err)
	new2, err := p.Alloc()
	require.NoError(err)

	// problem: 2 objects taken from the pool are actually the same object
	// problem: there is no error here. Errors will appear as memory damages in random parts of the application
	// solution: WithGuards(true) or `-tags pooldebug`, see TestDoubleFree_Guarded
	require.Same(&new1[0], &new2[0])
}

func TestDoubleFree_Guarded(t *testing.T) {
	require := require.New(t)
	p, err := NewPool("right", 32, 0, nil, nil, WithGuards(true))
	require.NoError(err)
	defer p.Destroy()

	obj, err := p.Alloc()
	require.NoError(err)
	require.NoError(p.Free(obj))
	require.ErrorIs(p.Free(obj), ErrNotOwned)

	// resliced object is still the same object
	obj, err = p.Alloc()
	require.NoError(err)
	require.NoError(p.Free(obj[:0]))

	new1, err := p.Alloc()
	require.NoError(err)
	new2, err := p.Alloc()
	require.NoError(err)
	require.NotSame(&new1[0], &new2[0])
	require.NoError(p.Free(new1))
	require.NoError(p.Free(new2))
	require.Equal(2, p.Stats().FreeCount)
}

func TestFreeForeignObject(t *testing.T) {
	require := require.New(t)
	guarded, err := NewPool("guarded", 32, 0, nil, nil, WithGuards(true))
	require.NoError(err)
	defer guarded.Destroy()
	plain, err := NewPool("plain", 32, 0, nil, nil, WithGuards(false))
	require.NoError(err)
	defer plain.Destroy()

	// shape differs
	require.ErrorIs(guarded.Free(make([]byte, 32)), ErrNotOwned)
	require.ErrorIs(plain.Free(make([]byte, 16)), ErrNotOwned)
	require.ErrorIs(plain.Free(nil), ErrNotOwned)

	obj, err := guarded.Alloc()
	require.NoError(err)
	require.ErrorIs(plain.Free(obj), ErrNotOwned)
	require.ErrorIs(guarded.Free(obj[1:]), ErrNotOwned)

	// same shape, not ours: caught by guarded pools only
	require.ErrorIs(guarded.Free(make([]byte, 32, 32+GuardWidth)), ErrNotOwned)

	require.NoError(guarded.Free(obj))
	require.Zero(guarded.Stats().InUse)
}
