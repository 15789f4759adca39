package expansion

import (
	"time"

	"github.com/poiesic/rensou/core"
)

// Monitor provides hooks to observe an expansion.
// Hooks are called from the goroutine running Expand, never concurrently
// for the same expansion.
type Monitor interface {
	Start(keyword string, depth int, threshold float64)
	NodeEmitted(node core.GenerationNode)
	BranchEmpty(generation int, parent string)
	Finish(result *core.ExpansionResult, err error, elapsed time.Duration)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int, _ float64)                         {}
func (n *noopMonitor) NodeEmitted(_ core.GenerationNode)                        {}
func (n *noopMonitor) BranchEmpty(_ int, _ string)                              {}
func (n *noopMonitor) Finish(_ *core.ExpansionResult, _ error, _ time.Duration) {}
