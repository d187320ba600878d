package game

import "sort"

// TallyEntry is one candidate's vote count
type TallyEntry struct {
	ID    string `json:"id"`
	Votes int    `json:"votes"`
}

type tally map[string]int

func (t tally) add(id string) {
	if id != "" {
		t[id]++
	}
}

// ranked orders candidates by votes, most first. Equal counts are ordered by
// roster position so the result never depends on map iteration.
func (t tally) ranked(s *RoomState) []TallyEntry {
	out := make([]TallyEntry, 0, len(t))
	for id, n := range t {
		out = append(out, TallyEntry{ID: id, Votes: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Votes != out[j].Votes {
			return out[i].Votes > out[j].Votes
		}
		return s.rosterIndex(out[i].ID) < s.rosterIndex(out[j].ID)
	})
	return out
}
