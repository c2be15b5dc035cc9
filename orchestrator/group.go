package orchestrator

import "sort"

// Regroup inverts the batch refs into one member per source. Members appear in
// the order their source first shows up in refs; within a member, positions
// are sorted by chunk index regardless of where they sit in the batch. Source
// ids are compared exactly.
func Regroup(refs []Ref) Group {
	var g Group
	at := map[string]int{}
	for pos, r := range refs {
		i, ok := at[r.Source]
		if !ok {
			i = len(g)
			at[r.Source] = i
			g = append(g, Member{Source: r.Source})
		}
		g[i].Positions = append(g[i].Positions, pos)
		g[i].Indices = append(g[i].Indices, r.Index)
	}

	for i := range g {
		m := &g[i]
		sort.Stable(byIndex{m})
	}
	return g
}

type byIndex struct{ m *Member }

func (b byIndex) Len() int           { return len(b.m.Positions) }
func (b byIndex) Less(i, j int) bool { return b.m.Indices[i] < b.m.Indices[j] }
func (b byIndex) Swap(i, j int) {
	b.m.Positions[i], b.m.Positions[j] = b.m.Positions[j], b.m.Positions[i]
	b.m.Indices[i], b.m.Indices[j] = b.m.Indices[j], b.m.Indices[i]
}
