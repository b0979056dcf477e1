package mockrunner

import (
	"os/exec"
	"slices"
	"sync"

	"github.com/sa6mwa/procrun/port"
)

// Behavior represents a single command execution path for the mock runner.
// It may write to cmd.Stdout to simulate output.
type Behavior func(cmd *exec.Cmd) error

// Call records what a Process handed to the runner.
type Call struct {
	Args []string
	Dir  string
	Env  []string
}

// Runner is a thread-safe mock implementation of port.CommandRunner. It
// never spawns anything.
type Runner struct {
	mu        sync.Mutex
	behaviors []Behavior
	Calls     []Call
}

var _ port.CommandRunner = (*Runner)(nil)

// New constructs a Runner that will invoke behaviors sequentially for each
// call. Calls beyond the queued behaviors succeed without output.
func New(behaviors ...Behavior) *Runner {
	return &Runner{behaviors: slices.Clone(behaviors)}
}

// Run records the call metadata and dispatches to the next behavior.
func (r *Runner) Run(cmd *exec.Cmd) error {
	r.mu.Lock()
	r.Calls = append(r.Calls, Call{
		Args: slices.Clone(cmd.Args),
		Dir:  cmd.Dir,
		Env:  slices.Clone(cmd.Env),
	})
	var behavior Behavior
	if len(r.behaviors) > 0 {
		behavior = r.behaviors[0]
		r.behaviors = r.behaviors[1:]
	}
	r.mu.Unlock()

	if behavior == nil {
		return nil
	}
	return behavior(cmd)
}

// Remaining returns the number of queued behaviors that have not yet been consumed.
func (r *Runner) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.behaviors)
}

// Last returns the most recent call, or false if Run was never called.
func (r *Runner) Last() (Call, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Calls) == 0 {
		return Call{}, false
	}
	return r.Calls[len(r.Calls)-1], true
}
