package augustus

import (
	"github.com/phil-mansfield/augustus/catalog"
)

// Membership maps the objects of one kind in a snapshot to the indices of
// their member particles. It is empty until the corresponding Identify
// method of its Snapshot runs.
type Membership struct {
	ids     []int
	members [SpeciesCount]map[int][]int64
}

func newMembership() *Membership {
	m := &Membership{ids: []int{}}
	for sp := range m.members {
		m.members[sp] = map[int][]int64{}
	}
	return m
}

// extractMembership builds a fresh Membership from a catalogue's object
// list. If two objects share a GroupID, the later one's members win, but
// both appear in IDs.
func extractMembership(objs []catalog.Object) *Membership {
	m := newMembership()
	for i := range objs {
		id := objs[i].GroupID
		m.ids = append(m.ids, id)
		for sp, idx := range objs[i].Members() {
			m.members[sp][id] = idx
		}
	}
	return m
}

// IDs returns the object IDs in catalogue order.
func (m *Membership) IDs() []int {
	out := make([]int, len(m.ids))
	copy(out, m.ids)
	return out
}

// Len returns the number of distinct objects.
func (m *Membership) Len() int { return len(m.members[Gas]) }

// Members returns the indices of the given species' particles which belong
// to object id.
func (m *Membership) Members(id int, sp Species) ([]int64, bool) {
	if sp < 0 || int(sp) >= SpeciesCount {
		return nil, false
	}
	idx, ok := m.members[sp][id]
	return idx, ok
}

// Particles returns all four member lists of object id, indexed by Species.
func (m *Membership) Particles(id int) ([SpeciesCount][]int64, bool) {
	out := [SpeciesCount][]int64{}
	if _, ok := m.members[Gas][id]; !ok {
		return out, false
	}
	for sp := range out {
		out[sp] = m.members[sp][id]
	}
	return out, true
}

// Species returns the map from object ID to member indices for a single
// species. The map must not be modified.
func (m *Membership) Species(sp Species) map[int][]int64 {
	return m.members[sp]
}
