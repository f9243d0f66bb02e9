// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package result

import "context"

func ReportToNoop(ctx context.Context, config any, r *Report) error {
	return nil
}
