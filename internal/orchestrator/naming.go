package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Output file prefixes
const (
	InputPrefix  = "user_audio"
	OutputPrefix = "feedback"
)

// outputNamer hands out unix-second stamps that never repeat and never
// name an existing file, so runs in the same second do not collide.
type outputNamer struct {
	dir string
	now func() time.Time

	mu   sync.Mutex
	last int64
}

func newOutputNamer(dir string) *outputNamer {
	return &outputNamer{dir: dir, now: time.Now}
}

// stamp reserves a stamp shared by one run's input and output files
func (n *outputNamer) stamp() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	s := n.now().Unix()
	if s <= n.last {
		s = n.last + 1
	}
	for n.taken(s) {
		s++
	}
	n.last = s
	return s
}

func (n *outputNamer) taken(stamp int64) bool {
	for _, prefix := range []string{InputPrefix, OutputPrefix} {
		if _, err := os.Stat(n.path(prefix, stamp)); err == nil {
			return true
		}
	}
	return false
}

func (n *outputNamer) path(prefix string, stamp int64) string {
	return filepath.Join(n.dir, fmt.Sprintf("%s_%d.mp3", prefix, stamp))
}
