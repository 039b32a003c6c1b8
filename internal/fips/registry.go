package fips

import (
	"os/exec"
	"sync"
)

// ProcessRegistry collects tunnel processes spawned on the caller's behalf.
// Activation only appends; waiting on and stopping the processes is the caller's job.
type ProcessRegistry struct {
	mu      sync.Mutex
	handles []*exec.Cmd
}

func (r *ProcessRegistry) Register(cmd *exec.Cmd) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles = append(r.handles, cmd)
}

// Handles returns a snapshot of the registered processes in spawn order.
func (r *ProcessRegistry) Handles() []*exec.Cmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*exec.Cmd, len(r.handles))
	copy(out, r.handles)
	return out
}

func (r *ProcessRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}
