// Package parallel implements the fork/join discipline the carving
// pipeline's two parallel regions (max-range estimation, carving) share:
// split scans into groups of roughly equal size, run each group on its own
// goroutine, and wait for all of them before returning.
package parallel

import (
	"sync"

	"go.viam.com/utils"
)

// ForEachScan runs work(i) for every i in [0, n), split across jobs
// goroutines, and waits for all of them to finish. jobs <= 1 runs
// sequentially on the calling goroutine. work must not share mutable state
// across indices without its own synchronization; the carving pipeline
// satisfies this by giving each call its own thread-local accumulator and
// merging it into the shared result under a mutex.
func ForEachScan(n, jobs int, work func(i int)) {
	if jobs <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			work(i)
		}
		return
	}
	if jobs > n {
		jobs = n
	}

	groupSize := n / jobs
	extra := n % jobs

	var wait sync.WaitGroup
	wait.Add(jobs)
	from := 0
	for group := 0; group < jobs; group++ {
		to := from + groupSize
		if group == jobs-1 {
			to += extra
		}
		groupFrom, groupTo := from, to
		utils.PanicCapturingGo(func() {
			defer wait.Done()
			for i := groupFrom; i < groupTo; i++ {
				work(i)
			}
		})
		from = to
	}
	wait.Wait()
}
