package workflow

// SendToStatuses are the offices a document can be routed to.
var SendToStatuses = []Status{
	StatusSendToAMAdmin,
	StatusSendToHODAdmin,
	StatusSendToAudit,
	StatusSendToFinance,
	StatusSendToCEOOffice,
}

// Graph is a static adjacency table plus the fixed resubmission rules.
type Graph struct {
	adjacency map[Status]map[Status]struct{}
	known     map[Status]struct{}
}

// NewGraph builds a graph from an adjacency table. Every status appearing as
// a key or a target becomes part of the vocabulary.
func NewGraph(adjacency map[Status][]Status) *Graph {
	g := &Graph{
		adjacency: make(map[Status]map[Status]struct{}, len(adjacency)),
		known:     map[Status]struct{}{},
	}
	for from, tos := range adjacency {
		set := make(map[Status]struct{}, len(tos))
		for _, to := range tos {
			set[to] = struct{}{}
			g.known[to] = struct{}{}
		}
		g.adjacency[from] = set
		g.known[from] = struct{}{}
	}
	return g
}

func withSendTo(extra ...Status) []Status {
	out := append([]Status{}, extra...)
	return append(out, SendToStatuses...)
}

// DefaultGraph is the routing used by the admin submodules.
var DefaultGraph = NewGraph(map[Status][]Status{
	StatusDraft:           withSendTo(StatusActive),
	StatusActive:          withSendTo(),
	StatusSendToAMAdmin:   {StatusSendToHODAdmin, StatusSendToAudit, StatusSendToFinance, StatusSendToCEOOffice},
	StatusSendToHODAdmin:  {StatusSendToAudit, StatusSendToFinance, StatusSendToCEOOffice},
	StatusSendToAudit:     {StatusSendToFinance, StatusSendToCEOOffice, StatusReturnedFromAudit},
	StatusSendToFinance:   {StatusSendToCEOOffice},
	StatusSendToCEOOffice: {StatusForwardedToCEO, StatusReturnedFromCEOOffice},
	StatusApproved:        withSendTo(),
	StatusRejected:        withSendTo(StatusDraft),
})

// Next lists the static targets of from, ignoring the resubmission rules.
func (g *Graph) Next(from Status) []Status {
	out := make([]Status, 0, len(g.adjacency[from]))
	for to := range g.adjacency[from] {
		out = append(out, to)
	}
	return out
}

func (g *Graph) adjacent(from, to Status) bool {
	_, ok := g.adjacency[from][to]
	return ok
}

// Known reports whether the base of s belongs to the vocabulary.
func (g *Graph) Known(s Status) bool {
	_, ok := g.known[BaseStatus(s)]
	return ok
}

// IsValidTransition applies, in order: no-op, base adjacency, re-forwarding
// after a resolution, the two resubmission shortcuts, and finally the raw
// adjacency of from. It never fails; callers turn false into a user error.
func (g *Graph) IsValidTransition(from, to Status) bool {
	if from == to {
		return true
	}
	base := BaseStatus(from)
	if g.adjacent(base, to) {
		return true
	}
	if IsOutcome(base) {
		if IsSendTo(to) {
			return true
		}
		// approved documents only move forward
		if to == StatusDraft && base == StatusRejected {
			return true
		}
	}
	if from == StatusReturnedFromAudit && to == StatusSendToAudit {
		return true
	}
	if from == StatusReturnedFromCEOOffice && (to == StatusDraft || IsSendTo(to)) {
		return true
	}
	return g.adjacent(from, to)
}

// Reachable returns every status reachable from start, start excluded unless
// it lies on a cycle.
func (g *Graph) Reachable(start Status) map[Status]struct{} {
	seen := map[Status]struct{}{}
	queue := []Status{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for next := range g.adjacency[cur] {
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	return seen
}

// ValidResolved checks that a resolved status names an outcome we know and a
// source that the document could have reached from Draft.
func (g *Graph) ValidResolved(s Status) bool {
	st := Parse(s)
	if !st.IsResolved() {
		return false
	}
	if st.Outcome != OutcomeApproved && st.Outcome != OutcomeRejected {
		return false
	}
	_, ok := g.Reachable(StatusDraft)[st.Source]
	return ok
}

// IsValidTransition checks a transition against DefaultGraph.
func IsValidTransition(from, to Status) bool { return DefaultGraph.IsValidTransition(from, to) }
