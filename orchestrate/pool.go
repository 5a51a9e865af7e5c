// Copyright © 2020 AMIS Technologies
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package orchestrate runs the per-ballot re-encryption-mix steps of a tally
// round across a bounded set of goroutines. Each ballot's conversion is
// independent of every other ballot's, so the work fans out cleanly; unlike
// a plain fire-and-forget sync.WaitGroup fan-out, a failed ballot conversion
// here must abort the round, so this pool is built on errgroup instead.
package orchestrate

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/cryptovoting/damgard-jurik/logger"
)

// Pool bounds how many units of work run concurrently.
type Pool struct {
	concurrency int
	// Progress, if set, is invoked after each unit of work completes
	// (successfully or not) with the number completed so far and the total.
	Progress func(done, total int)
}

// New returns a Pool that runs at most concurrency units of work at once.
// A non-positive concurrency is treated as 1.
func New(concurrency int) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pool{concurrency: concurrency}
}

// Run calls fn(ctx, i) for every i in [0, n), with at most p.concurrency
// calls in flight at a time. It returns the first error any call returns,
// after which the context passed to still-running calls is canceled.
func (p *Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, p.concurrency)
	var done int64

	for i := 0; i < n; i++ {
		i := i
		select {
		case sem <- struct{}{}:
		case <-gctx.Done():
			return g.Wait()
		}
		g.Go(func() error {
			defer func() { <-sem }()
			err := fn(gctx, i)
			if p.Progress != nil {
				p.Progress(int(atomic.AddInt64(&done, 1)), n)
			}
			if err != nil {
				logger.Logger().Warn("orchestrate: unit of work failed", "index", i, "err", err)
			}
			return err
		})
	}
	return g.Wait()
}
