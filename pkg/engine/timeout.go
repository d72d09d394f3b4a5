package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/chazu/stereo/pkg/scene"
)

// EvalTimeout is the evaluation limit of an Engine built without
// WithTimeout.
const EvalTimeout = 5 * time.Second

// evalResult carries what the evaluating goroutine produced.
type evalResult struct {
	scene  *scene.Registry
	errors []EvalError
	err    error
}

// waitWithTimeout returns the result sent on ch by evaluation number gen.
// A result that arrives after a newer Evaluate call bumped *currentGen is
// dropped, so callers only ever install the scene of the latest script.
// When nothing arrives within timeout the evaluating goroutine is left to
// finish on its own and its late result goes unread.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
	timeout time.Duration,
) (*scene.Registry, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		latest := *currentGen
		mu.Unlock()
		if gen != latest {
			return nil, nil, fmt.Errorf("evaluation superseded by newer request")
		}
		return res.scene, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", timeout)
	}
}
