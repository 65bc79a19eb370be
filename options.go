/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package pool

import "go.uber.org/zap"

type poolOptions struct {
	guarded         bool
	initialCapacity int
	maxCapacity     int
	allocator       Allocator
	userCtx         any
	onCorruption    func(err *CorruptionError)
	log             *zap.Logger
}

type Option func(*poolOptions)

func defaultOptions() poolOptions {
	return poolOptions{
		guarded:         guardsByDefault,
		initialCapacity: DefaultInitialCapacity,
		allocator:       HeapAllocator{},
		log:             zap.NewNop(),
	}
}

// WithGuards turns redzones on or off for the pool regardless of the `pooldebug` build tag
// guarded pools also track checked out objects, so foreign and twice freed objects are rejected
func WithGuards(enabled bool) Option {
	return func(o *poolOptions) { o.guarded = enabled }
}

// WithInitialCapacity sets the initial free list capacity, DefaultInitialCapacity is used by default
func WithInitialCapacity(capacity int) Option {
	return func(o *poolOptions) { o.initialCapacity = capacity }
}

// WithMaxCapacity limits the free list growth. 0 means unlimited
// objects freed into a full free list which can not grow anymore are destructed and dropped
func WithMaxCapacity(capacity int) Option {
	return func(o *poolOptions) { o.maxCapacity = capacity }
}

// WithAllocator replaces the default HeapAllocator
func WithAllocator(a Allocator) Option {
	return func(o *poolOptions) { o.allocator = a }
}

// WithUserContext sets the value passed to the Constructor and the Destructor
func WithUserContext(userCtx any) Option {
	return func(o *poolOptions) { o.userCtx = userCtx }
}

// WithCorruptionHandler is called on redzone violation instead of panic
// Free() returns the *CorruptionError after the handler returns
func WithCorruptionHandler(h func(err *CorruptionError)) Option {
	return func(o *poolOptions) { o.onCorruption = h }
}

func WithLogger(log *zap.Logger) Option {
	return func(o *poolOptions) { o.log = log }
}
