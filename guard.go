/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package pool

import (
	"encoding/binary"
	"sync/atomic"
)

// RedzonePattern is written right before and right after each object of a guarded pool
const RedzonePattern uint64 = 0xdeadbeefcafebabe

// GuardWidth is the size of each redzone in bytes
const GuardWidth = 8

// GuardFault tells which redzone of an object was found damaged
type GuardFault int32

const (
	GuardLeading  GuardFault = -1
	GuardOK       GuardFault = 0
	GuardTrailing GuardFault = 1
)

func (f GuardFault) String() string {
	switch f {
	case GuardOK:
		return "no error"
	case GuardTrailing:
		return "trailing redzone overwritten"
	case GuardLeading:
		return "leading redzone overwritten"
	}
	return "unknown guard fault"
}

var lastGuardFault atomic.Int32

// LastGuardFault returns the latest redzone violation detected by any pool
// useful in tests, per-call result is returned by Free()
func LastGuardFault() GuardFault {
	return GuardFault(lastGuardFault.Load())
}

// ResetGuardFault clears the value returned by LastGuardFault()
func ResetGuardFault() {
	lastGuardFault.Store(int32(GuardOK))
}

// block layout: [leading redzone][object][trailing redzone]
func stampGuards(block []byte) {
	binary.NativeEndian.PutUint64(block[:GuardWidth], RedzonePattern)
	binary.NativeEndian.PutUint64(block[len(block)-GuardWidth:], RedzonePattern)
}

// trailing is checked first: overruns past the object are the common case
func checkGuards(block []byte) GuardFault {
	if binary.NativeEndian.Uint64(block[len(block)-GuardWidth:]) != RedzonePattern {
		return GuardTrailing
	}
	if binary.NativeEndian.Uint64(block[:GuardWidth]) != RedzonePattern {
		return GuardLeading
	}
	return GuardOK
}
