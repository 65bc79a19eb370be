/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package pool

// HeapAllocator takes blocks from the Go heap. Free() leaves the block to GC
type HeapAllocator struct{}

func (HeapAllocator) Malloc(size int) []byte {
	return make([]byte, size)
}

func (HeapAllocator) Free([]byte) {}
