package assignment

import (
	"sort"

	"github.com/helpdesk-ops/ticket-assignment/internal/domain"
)

// Selection is the selector's verdict. Rejected holds every other candidate in
// ranked order.
type Selection struct {
	Winner   domain.Candidate
	Rejected []domain.Candidate
}

// Select ranks candidates by tier ascending then match percentage descending and
// returns the best eligible one. The sort is stable, so equal candidates keep the
// pool order (lower workload first). ok is false when no candidate is eligible;
// Rejected then still lists every candidate.
func Select(candidates []domain.Candidate) (sel Selection, ok bool) {
	ranked := Rank(candidates)

	winner := -1
	for i, c := range ranked {
		if Eligible(c.Tier) {
			winner = i
			break
		}
	}
	if winner < 0 {
		return Selection{Rejected: ranked}, false
	}

	sel.Winner = ranked[winner]
	sel.Rejected = make([]domain.Candidate, 0, len(ranked)-1)
	sel.Rejected = append(sel.Rejected, ranked[:winner]...)
	sel.Rejected = append(sel.Rejected, ranked[winner+1:]...)
	return sel, true
}

// Rank returns a sorted copy of candidates; the input is left untouched.
func Rank(candidates []domain.Candidate) []domain.Candidate {
	ranked := make([]domain.Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Tier != ranked[j].Tier {
			return ranked[i].Tier < ranked[j].Tier
		}
		return ranked[i].SkillMatch.Percentage > ranked[j].SkillMatch.Percentage
	})
	return ranked
}
