/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package swiss

import (
	"fmt"
	"slices"
	"sort"

	"github.com/mikeb26/swisstd/tournament"
)

type entry struct {
	rank   int
	score  float64
	rating int
	// pos is the overall pairing order, 0 being the top player
	pos    int
	colors []tournament.Color
	met    map[int]bool
	hadBye bool
}

func newEntry(p tournament.Player) *entry {
	en := &entry{
		rank:   p.StartingRank,
		score:  p.Score,
		rating: p.Rating(),
		colors: p.PlayedColors(),
		met:    make(map[int]bool, len(p.Opponents)),
		hadBye: p.ReceivedBye(),
	}
	for _, o := range p.Opponents {
		en.met[o] = true
	}
	return en
}

// sortEntries orders by score, then rating, then starting rank.
func sortEntries(entries []*entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.rating != b.rating {
			return a.rating > b.rating
		}
		return a.rank < b.rank
	})
}

// scoreGroups splits sorted entries into runs of equal score.
func scoreGroups(entries []*entry) [][]*entry {
	var groups [][]*entry
	for i, en := range entries {
		if i == 0 || en.score != entries[i-1].score {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], en)
	}
	return groups
}

type search struct {
	iter     int
	max      int
	strict   bool
	limitHit bool
	pairs    [][2]*entry
}

func newSearch(max int, strict bool) *search {
	return &search{max: max, strict: strict}
}

func (s *search) failure() error {
	if s.limitHit {
		return fmt.Errorf("%w: %w", ErrPairingInfeasible, ErrSearchLimit)
	}
	return ErrPairingInfeasible
}

// pairAll pairs every entry, setting aside one for the bye when the count
// is odd. Bye candidates are tried from the bottom of the order, players who
// have not had a bye first.
func (s *search) pairAll(entries []*entry) ([][2]*entry, *entry, error) {
	if len(entries)%2 == 0 {
		if s.pairFrom(scoreGroups(entries), 0, nil) {
			return s.pairs, nil, nil
		}
		return nil, nil, s.failure()
	}

	var candidates []*entry
	for i := len(entries) - 1; i >= 0; i-- {
		if !entries[i].hadBye {
			candidates = append(candidates, entries[i])
		}
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].hadBye {
			candidates = append(candidates, entries[i])
		}
	}
	for _, bye := range candidates {
		rest := slices.DeleteFunc(slices.Clone(entries), func(en *entry) bool {
			return en == bye
		})
		s.pairs = s.pairs[:0]
		if s.pairFrom(scoreGroups(rest), 0, nil) {
			return s.pairs, bye, nil
		}
		if s.limitHit {
			break
		}
	}
	return nil, nil, s.failure()
}

// pairFrom pairs score groups gi onward, with floaters carried down from the
// group above. Each bracket first tries to float as few players as
// possible.
func (s *search) pairFrom(groups [][]*entry, gi int, floaters []*entry) bool {
	if gi == len(groups) {
		return len(floaters) == 0
	}
	bracket := make([]*entry, 0, len(floaters)+len(groups[gi]))
	bracket = append(bracket, floaters...)
	bracket = append(bracket, groups[gi]...)
	sortEntries(bracket)

	last := gi == len(groups)-1
	for nf := len(bracket) % 2; nf <= len(bracket); nf += 2 {
		if last && nf > 0 {
			return false
		}
		ok := s.pairBracket(bracket, nf, func(down []*entry) bool {
			return s.pairFrom(groups, gi+1, down)
		})
		if ok {
			return true
		}
		if s.limitHit {
			return false
		}
	}
	return false
}

// pairBracket pairs all but nf players of the bracket, top half against
// bottom half, and hands the unpaired players to next.
func (s *search) pairBracket(br []*entry, nf int, next func([]*entry) bool) bool {
	half := len(br) / 2
	cands := make([][]int, len(br))
	for a := range br {
		cands[a] = candidateOrder(a, len(br), half)
	}
	used := make([]bool, len(br))
	return s.dfs(br, cands, used, (len(br)-nf)/2, nf, nil, next)
}

// candidateOrder lists possible opponents for bracket member a: the natural
// partner a+half first, then the rest of the bottom half by distance from
// it, then members of the top half.
func candidateOrder(a int, n int, half int) []int {
	var ret []int
	for b := a + 1; b < n; b++ {
		ret = append(ret, b)
	}
	target := a + half
	tier := func(b int) int {
		if a < half && b >= half {
			return 0
		}
		return 1
	}
	dist := func(b int) int {
		if b > target {
			return b - target
		}
		return target - b
	}
	sort.SliceStable(ret, func(i, j int) bool {
		bi, bj := ret[i], ret[j]
		if tier(bi) != tier(bj) {
			return tier(bi) < tier(bj)
		}
		if dist(bi) != dist(bj) {
			return dist(bi) < dist(bj)
		}
		return bi < bj
	})
	return ret
}

func (s *search) dfs(br []*entry, cands [][]int, used []bool, pairsLeft int,
	floatsLeft int, floats []*entry, next func([]*entry) bool) bool {

	s.iter++
	if s.iter > s.max {
		s.limitHit = true
		return false
	}
	a := slices.Index(used, false)
	if a < 0 {
		return next(floats)
	}

	used[a] = true
	if pairsLeft > 0 {
		for _, b := range cands[a] {
			if used[b] || !s.compatible(br[a], br[b]) {
				continue
			}
			used[b] = true
			s.pairs = append(s.pairs, [2]*entry{br[a], br[b]})
			if s.dfs(br, cands, used, pairsLeft-1, floatsLeft, floats, next) {
				return true
			}
			s.pairs = s.pairs[:len(s.pairs)-1]
			used[b] = false
			if s.limitHit {
				used[a] = false
				return false
			}
		}
	}
	if floatsLeft > 0 {
		down := append(slices.Clone(floats), br[a])
		if s.dfs(br, cands, used, pairsLeft, floatsLeft-1, down, next) {
			return true
		}
	}
	used[a] = false
	return false
}

func (s *search) compatible(a *entry, b *entry) bool {
	if a.met[b.rank] || b.met[a.rank] {
		return false
	}
	if !s.strict {
		return true
	}
	return (colorAllowed(a, tournament.White) && colorAllowed(b, tournament.Black)) ||
		(colorAllowed(a, tournament.Black) && colorAllowed(b, tournament.White))
}
