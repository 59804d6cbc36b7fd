package tidepool

import (
	"fmt"
	"os"
	"time"
)

// debugStats holds per-frame timing and draw metrics.
// Only populated when Scene.debug is true.
type debugStats struct {
	traverseTime  time.Duration
	submitTime    time.Duration
	commandCount  int
	drawCallCount int
	offscreen     int
	nodeCount     int
}

// debugLog prints timing and draw-call stats to stderr.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[tidepool] traverse: %v | submit: %v | total: %v\n",
		stats.traverseTime, stats.submitTime, stats.traverseTime+stats.submitTime)
	_, _ = fmt.Fprintf(os.Stderr,
		"[tidepool] commands: %d | draw calls: %d | offscreen: %d | nodes: %d\n",
		stats.commandCount, stats.drawCallCount, stats.offscreen, stats.nodeCount)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. In release mode callers skip this entirely.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("tidepool debug: %s on disposed node %q", op, n.Name))
	}
}

// debugCheckTreeDepth warns on stderr if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[tidepool] warning: tree depth %d exceeds %d (node %q)\n",
			depth, debugMaxTreeDepth, n.Name)
	}
}

// debugCheckChildCount warns on stderr if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		_, _ = fmt.Fprintf(os.Stderr, "[tidepool] warning: node %q has %d children (threshold %d)\n",
			n.Name, len(n.children), debugMaxChildCount)
	}
}

// countDrawCalls counts individual draw calls from the command list.
// Particle commands count as the number of alive particles.
func countDrawCalls(commands []RenderCommand) int {
	count := 0
	for i := range commands {
		cmd := &commands[i]
		switch cmd.Type {
		case CommandParticle:
			if cmd.emitter != nil {
				count += cmd.emitter.alive
			}
		default:
			count++
		}
	}
	return count
}
