/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package pool

// IPool s.e.
// use NewPool(), NewPoolFromConfig() or NewPoolStub()
type IPool interface {
	// Alloc borrows a fixed-size object from the pool
	// recycled objects are returned as is, brand new ones are initialized by the Constructor
	Alloc() ([]byte, error)

	// Free returns an object obtained by Alloc() of the same pool
	// the object as well as any subslice of it must not be used (even touched) from now on
	// objects that could not be kept are passed to the Destructor and dropped
	Free(obj []byte) error

	// Destroy destructs and drops every object held by the pool
	// objects borrowed but not freed at this moment are leaked by the caller
	Destroy()

	Name() string
	Stats() Stats
}

// Constructor initializes a brand new object. Not called for recycled objects.
// userCtx is the value provided by WithUserContext(), flags are reserved and always 0
// an error makes Alloc() fail, the object is dropped
type Constructor func(obj []byte, userCtx any, flags int) error

// Destructor is called when an object leaves the pool for good: on Destroy() or when the free list can not grow
type Destructor func(obj []byte, userCtx any)

// Allocator provides raw blocks for the pool
// Malloc returns nil if the memory is exhausted
// Free is called exactly once per block the pool drops
type Allocator interface {
	Malloc(size int) []byte
	Free(buf []byte)
}
