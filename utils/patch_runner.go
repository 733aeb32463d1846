package utils

import (
	"runtime"
	"sync"

	"github.com/eapache/queue"
)

// PatchRunner executes independent per-patch work on ParallelDegree
// goroutines. Patches are pulled dynamically from a shared queue so large
// and small patches balance out.
type PatchRunner struct {
	ParallelDegree int
}

func NewPatchRunner(procLimit int) *PatchRunner {
	pr := &PatchRunner{ParallelDegree: procLimit}
	if procLimit <= 0 {
		pr.ParallelDegree = runtime.NumCPU()
	}
	return pr
}

// DefaultRunner is used by packages that are not handed a runner explicitly
var DefaultRunner = NewPatchRunner(0)

// ForEach calls fn(worker, i) once for every i in [0,n) and returns when all
// calls have completed.
func (pr *PatchRunner) ForEach(n int, fn func(worker, i int)) {
	var (
		NP = pr.ParallelDegree
		q  = queue.New()
		mu sync.Mutex
		wg sync.WaitGroup
	)
	if NP > n {
		NP = n
	}
	if NP <= 1 {
		for i := 0; i < n; i++ {
			fn(0, i)
		}
		return
	}
	for i := 0; i < n; i++ {
		q.Add(i)
	}
	next := func() (item int, ok bool) {
		mu.Lock()
		defer mu.Unlock()
		if q.Length() == 0 {
			return 0, false
		}
		return q.Remove().(int), true
	}
	for np := 0; np < NP; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			for {
				item, ok := next()
				if !ok {
					return
				}
				fn(np, item)
			}
		}(np)
	}
	wg.Wait()
}

// ForEachRank runs fn once per rank concurrently, one goroutine per rank
func ForEachRank(NP int, fn func(rank int)) {
	wg := sync.WaitGroup{}
	for np := 0; np < NP; np++ {
		wg.Add(1)
		go func(np int) {
			fn(np)
			wg.Done()
		}(np)
	}
	wg.Wait()
}
