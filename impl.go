/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package pool

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

var (
	m               sync.Mutex = sync.Mutex{}
	objectsCounters []func() uint64
	isDebug         atomic.Bool
	objAmounts      map[string]int = map[string]int{}
)

func (st stackTrace) string() string {
	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)
	for _, sf := range st {
		fmt.Fprintf(bb, "%s\n\t%s:%d\n", sf.fn, sf.file, sf.line)
	}
	return bb.String()
}

// NewPool creates a pool of objectSize bytes objects
// alignment is informational only, must be 0 or a power of 2
// constructor and destructor are optional
func NewPool(name string, objectSize int, alignment int, constructor Constructor, destructor Destructor, opts ...Option) (IPool, error) {
	p, err := newPool(name, objectSize, alignment, constructor, destructor, opts)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// NewPoolStub creates pool which does not act as a pool. I.e. just allocates and constructs a new object on each Alloc()
// Free() destructs and drops the object
// redzones are still checked if enabled
// useful for investigations
func NewPoolStub(name string, objectSize int, constructor Constructor, destructor Destructor, opts ...Option) (IPool, error) {
	p, err := newPool(name, objectSize, 0, constructor, destructor, opts)
	if err != nil {
		return nil, err
	}
	p.isStub = true
	return p, nil
}

func newPool(name string, objectSize int, alignment int, constructor Constructor, destructor Destructor, opts []Option) (*implPool, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	switch {
	case len(name) == 0:
		return nil, fmt.Errorf("%w: empty pool name", ErrInvalidArgument)
	case objectSize <= 0:
		return nil, fmt.Errorf("%w: pool %q: object size %d", ErrInvalidArgument, name, objectSize)
	case alignment < 0 || alignment&(alignment-1) != 0:
		return nil, fmt.Errorf("%w: pool %q: alignment %d is not a power of 2", ErrInvalidArgument, name, alignment)
	case o.initialCapacity <= 0:
		return nil, fmt.Errorf("%w: pool %q: initial capacity %d", ErrInvalidArgument, name, o.initialCapacity)
	case o.maxCapacity != 0 && o.maxCapacity < o.initialCapacity:
		return nil, fmt.Errorf("%w: pool %q: max capacity %d is less than initial capacity %d", ErrInvalidArgument, name, o.maxCapacity, o.initialCapacity)
	case o.allocator == nil:
		return nil, fmt.Errorf("%w: pool %q: nil allocator", ErrInvalidArgument, name)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}

	p := &implPool{
		name:         name,
		objectSize:   objectSize,
		blockSize:    objectSize,
		payloadCap:   objectSize,
		alignment:    alignment,
		guarded:      o.guarded,
		free:         make([][]byte, o.initialCapacity),
		maxTotal:     o.maxCapacity,
		outstanding:  map[*byte]string{},
		constructor:  constructor,
		destructor:   destructor,
		userCtx:      o.userCtx,
		allocator:    o.allocator,
		onCorruption: o.onCorruption,
		log:          o.log.With(zap.String("pool", name)),
	}
	if p.guarded {
		p.blockSize = objectSize + 2*GuardWidth
		// the trailing redzone is reachable through the object capacity
		p.payloadCap = objectSize + GuardWidth
	}
	RegisterObjectsInUseCounter(func() uint64 {
		if n := p.objectsInUse.Load(); n > 0 {
			return uint64(n)
		}
		return 0
	})
	p.log.Debug("pool created",
		zap.Int("objectSize", objectSize),
		zap.Int("blockSize", p.blockSize),
		zap.Int("capacity", len(p.free)),
		zap.Bool("guarded", p.guarded))
	return p, nil
}

func (p *implPool) Name() string {
	return p.name
}

func (p *implPool) Alloc() ([]byte, error) {
	var st string
	if isDebug.Load() {
		st = getStackTrace().string()
	}

	p.mu.Lock()
	if p.isDestroyed {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrDestroyed, p.name)
	}
	var block []byte
	if p.freeCurr > 0 && !p.isStub {
		p.freeCurr--
		block = p.free[p.freeCurr]
		p.free[p.freeCurr] = nil
		p.reused.Add(1)
	} else {
		var err error
		if block, err = p.newBlock(); err != nil {
			p.mu.Unlock()
			return nil, err
		}
	}
	obj := p.object(block)
	if p.guarded || len(st) > 0 {
		p.outstanding[&obj[0]] = st
	}
	p.mu.Unlock()

	// the block belongs to the caller only, no need to hold the lock
	if p.guarded {
		stampGuards(block)
	}
	p.objectsInUse.Add(1)
	if len(st) > 0 {
		m.Lock()
		objAmounts[st]++
		m.Unlock()
	}
	return obj, nil
}

// must be called under lock
func (p *implPool) newBlock() ([]byte, error) {
	block := p.allocator.Malloc(p.blockSize)
	if block == nil {
		return nil, fmt.Errorf("%w: pool %q: %d bytes block", ErrOutOfMemory, p.name, p.blockSize)
	}
	block = block[:p.blockSize:p.blockSize]
	if p.constructor != nil {
		if err := p.constructor(p.object(block), p.userCtx, 0); err != nil {
			p.allocator.Free(block)
			p.log.Debug("constructor failed", zap.Error(err))
			return nil, fmt.Errorf("%w: pool %q: %w", ErrConstructorFailed, p.name, err)
		}
	}
	p.allocated.Add(1)
	return block, nil
}

func (p *implPool) Free(obj []byte) error {
	if cap(obj) != p.payloadCap {
		return fmt.Errorf("%w: pool %q: object capacity %d, expected %d", ErrNotOwned, p.name, cap(obj), p.payloadCap)
	}
	key := unsafe.SliceData(obj)

	p.mu.Lock()
	if p.isDestroyed {
		p.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrDestroyed, p.name)
	}
	st, tracked := p.outstanding[key]
	if p.guarded && !tracked {
		// foreign object or freed already
		p.mu.Unlock()
		return fmt.Errorf("%w: pool %q: %p", ErrNotOwned, p.name, key)
	}
	delete(p.outstanding, key)
	block := p.block(obj)
	fault := GuardOK
	if p.guarded {
		fault = checkGuards(block)
	}
	if fault == GuardOK {
		p.recycle(block)
	}
	p.mu.Unlock()

	p.objectsInUse.Add(-1)
	if len(st) > 0 {
		m.Lock()
		objAmounts[st]--
		m.Unlock()
	}
	if fault != GuardOK {
		return p.corruption(fault)
	}
	return nil
}

// must be called under lock
func (p *implPool) recycle(block []byte) {
	if p.isStub {
		p.discard(block)
		return
	}
	if p.freeCurr == len(p.free) && !p.grow() {
		p.discarded.Add(1)
		p.log.Warn("free list is full and can not grow, object is dropped",
			zap.Int("capacity", len(p.free)))
		p.discard(block)
		return
	}
	p.free[p.freeCurr] = block
	p.freeCurr++
}

// doubles the free list capacity, limited by maxTotal if set
// must be called under lock
func (p *implPool) grow() bool {
	newTotal := len(p.free) * 2
	if p.maxTotal > 0 {
		newTotal = min(newTotal, p.maxTotal)
	}
	if newTotal <= len(p.free) {
		return false
	}
	p.free = slices.Grow(p.free, newTotal-len(p.free))[:newTotal]
	p.log.Debug("free list grown", zap.Int("capacity", newTotal))
	return true
}

// must be called under lock
func (p *implPool) discard(block []byte) {
	if p.destructor != nil {
		p.destructor(p.object(block), p.userCtx)
		p.destructed.Add(1)
	}
	p.allocator.Free(block)
}

// the damaged block is neither reused nor destructed: its surroundings can not be trusted
func (p *implPool) corruption(fault GuardFault) error {
	p.corrupted.Add(1)
	lastGuardFault.Store(int32(fault))
	err := &CorruptionError{Pool: p.name, Fault: fault}
	p.log.Error("redzone violation, object is dropped", zap.Stringer("fault", fault))
	if p.onCorruption == nil {
		panic(err)
	}
	p.onCorruption(err)
	return err
}

func (p *implPool) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.isDestroyed {
		return
	}
	dropped := p.freeCurr
	for p.freeCurr > 0 {
		p.freeCurr--
		block := p.free[p.freeCurr]
		p.free[p.freeCurr] = nil
		p.discard(block)
	}
	p.free = nil
	p.outstanding = nil
	p.isDestroyed = true
	p.log.Debug("pool destroyed", zap.Int("dropped", dropped), zap.Int64("inUse", p.objectsInUse.Load()))
}

func (p *implPool) Stats() Stats {
	p.mu.Lock()
	freeCount, freeCapacity := p.freeCurr, len(p.free)
	p.mu.Unlock()
	return Stats{
		Name:         p.name,
		ObjectSize:   p.objectSize,
		BlockSize:    p.blockSize,
		Alignment:    p.alignment,
		Guarded:      p.guarded,
		FreeCount:    freeCount,
		FreeCapacity: freeCapacity,
		InUse:        p.objectsInUse.Load(),
		Allocated:    p.allocated.Load(),
		Reused:       p.reused.Load(),
		Discarded:    p.discarded.Load(),
		Corrupted:    p.corrupted.Load(),
		Destructed:   p.destructed.Load(),
	}
}

// object returns the part of the block handed out to callers
func (p *implPool) object(block []byte) []byte {
	if p.guarded {
		return block[GuardWidth : GuardWidth+p.objectSize : p.blockSize]
	}
	return block[:p.objectSize:p.objectSize]
}

// block is the reverse of object(). obj must be checked out from this pool
func (p *implPool) block(obj []byte) []byte {
	if p.guarded {
		start := unsafe.Add(unsafe.Pointer(unsafe.SliceData(obj)), -GuardWidth)
		return unsafe.Slice((*byte)(start), p.blockSize)
	}
	return obj[:p.blockSize]
}

func getStackTrace() stackTrace {
	pc := make([]uintptr, 100) // can't estimate
	n := runtime.Callers(3, pc)
	frames := runtime.CallersFrames(pc[:n])
	st := stackTrace{}
	for {
		frame, more := frames.Next()
		st = append(st, stackFrame{
			fn:   frame.Function,
			file: frame.File,
			line: frame.Line,
		})
		if !more {
			break
		}
	}
	return st
}
