package parser

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dhamidi/sqlgram/grammar"
)

// Stats counts what the strategies did during one or more parses. The
// counters may be shared by parses running on several goroutines; read
// the fields once those parses have returned.
type Stats struct {
	mu sync.Mutex

	Invocations map[grammar.Kind]int
	Rollbacks   int
	Recoveries  int
	// Skipped is the number of tokens covered by recovered error spans.
	Skipped  int
	MaxDepth int
}

func (s *Stats) invoked(k grammar.Kind, depth int) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Invocations == nil {
		s.Invocations = make(map[grammar.Kind]int)
	}
	s.Invocations[k]++
	s.MaxDepth = max(s.MaxDepth, depth)
}

func (s *Stats) rolledBack() {
	if s != nil {
		s.mu.Lock()
		s.Rollbacks++
		s.mu.Unlock()
	}
}

func (s *Stats) recovered(skipped int) {
	if s != nil {
		s.mu.Lock()
		s.Recoveries++
		s.Skipped += skipped
		s.mu.Unlock()
	}
}

func (s *Stats) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	kinds := make([]grammar.Kind, 0, len(s.Invocations))
	for k := range s.Invocations {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	var sb strings.Builder
	for _, k := range kinds {
		fmt.Fprintf(&sb, "%-22s %d\n", k, s.Invocations[k])
	}
	fmt.Fprintf(&sb, "%-22s %d\n", "rollbacks", s.Rollbacks)
	fmt.Fprintf(&sb, "%-22s %d\n", "recoveries", s.Recoveries)
	fmt.Fprintf(&sb, "%-22s %d\n", "skipped tokens", s.Skipped)
	fmt.Fprintf(&sb, "%-22s %d\n", "max depth", s.MaxDepth)
	return sb.String()
}
