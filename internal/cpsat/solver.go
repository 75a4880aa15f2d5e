package cpsat

import (
	"context"
	"sort"
	"time"
)

// Status reports the outcome of a solve.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusFeasible
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	default:
		return "UNKNOWN"
	}
}

// Options tunes a solve.
type Options struct {
	// MaxDuration bounds wall-clock time. Zero or negative means no limit.
	MaxDuration time.Duration
}

// Result holds the best assignment found.
type Result struct {
	Status    Status
	Objective int
	Elapsed   time.Duration
	Nodes     int64

	values []bool
}

// Value reports whether variable v is true in the best assignment. False for
// every variable when no assignment was found.
func (r *Result) Value(v int) bool {
	if r.values == nil || v < 0 || v >= len(r.values) {
		return false
	}
	return r.values[v]
}

const (
	stateFree  int8 = 0
	stateTrue  int8 = 1
	stateFalse int8 = -1
)

type solver struct {
	m *Model

	state     []int8
	trail     []int
	groupFree []int // free candidates per group
	groupDone []bool
	choice    []int // chosen variable per satisfied group
	consUsed  []int // true count per at-most constraint

	hasDeadline bool
	deadline    time.Time
	ctx         context.Context
	timedOut    bool

	nodes     int64
	incumbent []bool
	bestCost  int
	haveBest  bool
	proven    bool // best cost cannot be improved, stop searching
}

// Solve runs the search and returns the best result found within the budget.
func Solve(ctx context.Context, m *Model, opts Options) *Result {
	start := time.Now()

	s := &solver{
		m:         m,
		state:     make([]int8, m.numVars),
		groupFree: make([]int, len(m.groups)),
		groupDone: make([]bool, len(m.groups)),
		choice:    make([]int, len(m.groups)),
		consUsed:  make([]int, len(m.atMost)),
		ctx:       ctx,
	}
	for i := range s.choice {
		s.choice[i] = -1
	}
	for i, g := range m.groups {
		s.groupFree[i] = len(g.vars)
	}
	if opts.MaxDuration > 0 {
		s.hasDeadline = true
		s.deadline = start.Add(opts.MaxDuration)
	}

	res := &Result{Status: StatusUnknown}

	ok := true
	for _, v := range m.forbidden {
		if !s.setFalse(v) {
			ok = false
			break
		}
	}
	for i := range m.groups {
		if len(m.groups[i].vars) == 0 {
			ok = false
		}
	}

	if ok {
		s.search()
	}

	res.Elapsed = time.Since(start)
	res.Nodes = s.nodes
	if s.haveBest {
		res.values = s.incumbent
		res.Objective = s.bestCost
		if s.timedOut && !s.proven {
			res.Status = StatusFeasible
		} else {
			res.Status = StatusOptimal
		}
		return res
	}
	if s.timedOut {
		res.Status = StatusUnknown
	} else {
		res.Status = StatusInfeasible
	}
	return res
}

// search labels groups depth-first. Returns when the subtree is exhausted,
// the deadline expired, or the incumbent was proven unbeatable.
func (s *solver) search() {
	s.nodes++
	if s.nodes&255 == 0 && s.expired() {
		return
	}

	g := s.pickGroup()
	if g < 0 {
		cost := s.evaluate()
		if !s.haveBest || cost < s.bestCost {
			s.bestCost = cost
			s.haveBest = true
			s.incumbent = s.snapshot()
			if cost == 0 || !s.m.HasObjective() {
				s.proven = true
			}
		}
		return
	}

	minRank := -1
	if prev := s.m.groups[g].prev; prev >= 0 {
		minRank = s.m.rank[s.choice[prev]]
	}

	candidates := make([]int, 0, s.groupFree[g])
	for _, v := range s.m.groups[g].vars {
		if s.state[v] == stateFree && s.m.rank[v] > minRank {
			candidates = append(candidates, v)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return s.m.rank[candidates[i]] < s.m.rank[candidates[j]]
	})

	mark := len(s.trail)
	for _, v := range candidates {
		if s.proven || s.timedOut {
			return
		}
		if s.setTrue(v) {
			s.search()
		}
		s.undoTo(mark)
	}
}

// pickGroup returns the unsatisfied group with the fewest free candidates,
// restricted to groups whose chain predecessor is already satisfied. Returns
// -1 when every group is satisfied.
func (s *solver) pickGroup() int {
	best, bestFree := -1, int(^uint(0)>>1)
	for i := range s.m.groups {
		if s.groupDone[i] {
			continue
		}
		if prev := s.m.groups[i].prev; prev >= 0 && !s.groupDone[prev] {
			continue
		}
		if s.groupFree[i] < bestFree {
			best, bestFree = i, s.groupFree[i]
		}
	}
	return best
}

func (s *solver) setTrue(v int) bool {
	if s.state[v] == stateFalse {
		return false
	}
	if s.state[v] == stateTrue {
		return true
	}
	s.state[v] = stateTrue
	s.trail = append(s.trail, v)

	// Bookkeeping first, propagation second: a var on the trail as true must
	// have every counter adjusted so undoTo can reverse it uniformly.
	g := s.m.varGrp[v]
	if g >= 0 {
		s.groupFree[g]--
		s.groupDone[g] = true
		s.choice[g] = v
	}
	for _, c := range s.m.varCons[v] {
		s.consUsed[c]++
	}

	if g >= 0 {
		for _, other := range s.m.groups[g].vars {
			if other != v && s.state[other] == stateFree {
				if !s.setFalse(other) {
					return false
				}
			}
		}
	}

	for _, c := range s.m.varCons[v] {
		cons := &s.m.atMost[c]
		if s.consUsed[c] > cons.bound {
			return false
		}
		if s.consUsed[c] == cons.bound {
			for _, other := range cons.vars {
				if s.state[other] == stateFree {
					if !s.setFalse(other) {
						return false
					}
				}
			}
		}
	}
	return true
}

func (s *solver) setFalse(v int) bool {
	if s.state[v] == stateTrue {
		return false
	}
	if s.state[v] == stateFalse {
		return true
	}
	s.state[v] = stateFalse
	s.trail = append(s.trail, v)

	g := s.m.varGrp[v]
	if g >= 0 {
		s.groupFree[g]--
		if !s.groupDone[g] && s.groupFree[g] == 0 {
			return false
		}
	}
	return true
}

func (s *solver) undoTo(mark int) {
	for len(s.trail) > mark {
		v := s.trail[len(s.trail)-1]
		s.trail = s.trail[:len(s.trail)-1]

		g := s.m.varGrp[v]
		if s.state[v] == stateTrue {
			if g >= 0 {
				s.groupFree[g]++
				s.groupDone[g] = false
				s.choice[g] = -1
			}
			for _, c := range s.m.varCons[v] {
				s.consUsed[c]--
			}
		} else if g >= 0 {
			s.groupFree[g]++
		}
		s.state[v] = stateFree
	}
}

func (s *solver) expired() bool {
	select {
	case <-s.ctx.Done():
		s.timedOut = true
		return true
	default:
	}
	if s.hasDeadline && time.Now().After(s.deadline) {
		s.timedOut = true
		return true
	}
	return false
}

func (s *solver) snapshot() []bool {
	values := make([]bool, len(s.state))
	for i, st := range s.state {
		values[i] = st == stateTrue
	}
	return values
}

// evaluate computes the objective of the current complete assignment.
// Variables never touched by propagation are implicitly false.
func (s *solver) evaluate() int {
	cost := 0
	for _, term := range s.m.gapTerms {
		if s.anyTrue(term.a) && s.anyTrue(term.c) && !s.anyTrue(term.b) {
			cost++
		}
	}
	for _, term := range s.m.balanceTerms {
		minLoad, maxLoad := -1, 0
		for _, bucket := range term.buckets {
			load := 0
			for _, v := range bucket {
				if s.state[v] == stateTrue {
					load++
				}
			}
			if minLoad < 0 || load < minLoad {
				minLoad = load
			}
			if load > maxLoad {
				maxLoad = load
			}
		}
		cost += maxLoad - minLoad
	}
	return cost
}

func (s *solver) anyTrue(vars []int) bool {
	for _, v := range vars {
		if s.state[v] == stateTrue {
			return true
		}
	}
	return false
}
