/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package pool

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/slices"
)

// GetObjectsInUse returns total amount of objects taken from all pools but not returned
// useful in tests
func GetObjectsInUse() uint64 {
	res := uint64(0)
	m.Lock()
	for _, oc := range objectsCounters {
		res += oc()
	}
	m.Unlock()
	return res
}

// RegisterObjectsInUseCounter registers pooled objects counter which will be considered by GetObjectsInUse()
// called automatically on each NewPool() to track the new pool
// useful if e.g. we have different pool somewhere else it is useful to register its counter here and use pool.GetObjectsInUse() only as a single pooled objects counter
// note: func counter must be thread-safe
func RegisterObjectsInUseCounter(oc func() uint64) {
	m.Lock()
	objectsCounters = append(objectsCounters, oc)
	m.Unlock()
}

// PrintNonReleased prints stacktraces that explains where non-freed objects were allocated
// the most frequent allocation points go first
// note: debug mode must be turned on by `pool.SetDebug(true)` call
func PrintNonReleased(w io.Writer) {
	nr := getNonReleased()
	if len(nr) == 0 {
		return
	}
	sts := make([]string, 0, len(nr))
	for st := range nr {
		sts = append(sts, st)
	}
	slices.SortFunc(sts, func(a, b string) int {
		if nr[a] != nr[b] {
			return nr[b] - nr[a]
		}
		return strings.Compare(a, b)
	})
	fmt.Fprintln(w, "objects allocated from pools but not freed:")
	for _, st := range sts {
		amount := nr[st]
		st = "\t" + strings.ReplaceAll(st, "\n", "\n\t")
		st = st[:len(st)-1]
		fmt.Fprintf(w, "%d not freed allocated at:\n%s", amount, st)
	}
}

// SetDebug switches debug mode. In debug mode pools track amounts of non-freed objects
// per each Alloc() source code point (for all pools)
// use PrintNonReleased() to get explanations
// useful for investigations only, decreases performance
// redzones are not affected, see WithGuards()
func SetDebug(IsDebug bool) {
	isDebug.Store(IsDebug)
}

func getNonReleased() map[string]int {
	m.Lock()
	res := map[string]int{}
	for k, v := range objAmounts {
		if v > 0 {
			res[k] = v
		}
	}
	m.Unlock()
	return res
}
