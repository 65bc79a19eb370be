/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package pool

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument   = errors.New("pool: invalid argument")
	ErrOutOfMemory       = errors.New("pool: out of memory")
	ErrConstructorFailed = errors.New("pool: constructor failed")
	ErrNotOwned          = errors.New("pool: object is not checked out from this pool")
	ErrDestroyed         = errors.New("pool: pool is destroyed")
	ErrMemoryCorruption  = errors.New("pool: memory corruption detected")
)

// CorruptionError is returned (or panicked with) by Free() if a redzone of the object is damaged
// the pool bookkeeping around the object can not be trusted anymore, the object is never reused
type CorruptionError struct {
	Pool  string
	Fault GuardFault
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("%s: pool %q: %s", ErrMemoryCorruption, e.Pool, e.Fault)
}

func (e *CorruptionError) Unwrap() error {
	return ErrMemoryCorruption
}
