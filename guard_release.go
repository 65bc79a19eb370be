//go:build !pooldebug

/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package pool

// redzones are off unless built with `-tags pooldebug` or turned on by WithGuards(true)
const guardsByDefault = false
