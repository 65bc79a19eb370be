/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package pool

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// DefaultInitialCapacity is the free list capacity of a new pool
const DefaultInitialCapacity = 64

type implPool struct {
	mu sync.Mutex

	name        string
	objectSize  int
	blockSize   int
	payloadCap  int
	alignment   int
	guarded     bool
	isStub      bool
	isDestroyed bool

	// free[:freeCurr] are owned by the pool and may be handed out
	free     [][]byte
	freeCurr int
	maxTotal int

	// checked out blocks -> borrow stack trace (empty if not in debug mode)
	// maintained if guarded or in debug mode
	outstanding map[*byte]string

	constructor  Constructor
	destructor   Destructor
	userCtx      any
	allocator    Allocator
	onCorruption func(err *CorruptionError)
	log          *zap.Logger

	objectsInUse atomic.Int64
	allocated    atomic.Uint64
	reused       atomic.Uint64
	discarded    atomic.Uint64
	corrupted    atomic.Uint64
	destructed   atomic.Uint64
}

// Stats is a snapshot of the pool state
type Stats struct {
	Name         string
	ObjectSize   int
	BlockSize    int
	Alignment    int
	Guarded      bool
	FreeCount    int
	FreeCapacity int
	InUse        int64

	// constructed by the pool
	Allocated uint64
	// served from the free list
	Reused uint64
	// dropped on Free() because the free list could not grow
	Discarded uint64
	// rejected on Free() because of a damaged redzone
	Corrupted uint64
	// passed to the Destructor
	Destructed uint64
}

type stackFrame struct {
	fn   string
	file string
	line int
}

type stackTrace []stackFrame
