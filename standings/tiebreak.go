/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package standings

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mikeb26/swisstd/tournament"
)

// Tiebreak computes one secondary ranking criterion.
type Tiebreak interface {
	// Code is the short form accepted by ParseTiebreaks, e.g. "BH/C1".
	Code() string
	Name() string
	// Values returns one value per member of group. group holds the indexes
	// of players still tied on points and on every earlier tie-break.
	Values(d *Data, group []int) []float64
}

// Data is the per-player input shared by all tie-breaks, limited to the
// first Rounds rounds.
type Data struct {
	Rounds  int
	Players []tournament.Player
	byRank  map[int]int
	// score is the points through Rounds
	score []float64
	// adjusted is score with trailing voluntarily unplayed rounds counted
	// as draws, used when a player appears as someone's opponent
	adjusted []float64
	bh       []float64
}

func newData(players []tournament.Player, rounds int) *Data {
	d := &Data{
		Rounds:   rounds,
		Players:  players,
		byRank:   make(map[int]int, len(players)),
		score:    make([]float64, len(players)),
		adjusted: make([]float64, len(players)),
	}
	for i, p := range players {
		d.byRank[p.StartingRank] = i
		d.score[i] = p.ScoreAfter(rounds)
		d.adjusted[i] = d.score[i]
		slots := d.Slots(i)
		for j := len(slots) - 1; j >= 0 && slots[j].Outcome.Voluntary(); j-- {
			d.adjusted[i] += 0.5 - slots[j].Outcome.Points()
		}
	}
	return d
}

// Slots returns player i's slots for the rounds under consideration.
func (d *Data) Slots(i int) []tournament.Slot {
	s := d.Players[i].Slots
	if len(s) > d.Rounds {
		s = s[:d.Rounds]
	}
	return s
}

func (d *Data) Score(i int) float64 {
	return d.score[i]
}

func (d *Data) opponent(s tournament.Slot) (int, bool) {
	if s.Opponent == 0 {
		return 0, false
	}
	i, ok := d.byRank[s.Opponent]
	return i, ok
}

type contribution struct {
	value float64
	vur   bool
}

func (d *Data) buchholzParts(i int) []contribution {
	var parts []contribution
	for _, s := range d.Slots(i) {
		if opp, ok := d.opponent(s); ok && s.Outcome.Played() {
			parts = append(parts, contribution{value: d.adjusted[opp]})
			continue
		}
		// an unplayed round counts as a game against a dummy opponent
		// holding the player's own score
		parts = append(parts, contribution{value: d.score[i],
			vur: s.Outcome.Voluntary()})
	}
	return parts
}

func (d *Data) buchholz(i int, cut int) float64 {
	parts := d.buchholzParts(i)
	// voluntarily unplayed rounds are cut before the lowest opponents
	sort.SliceStable(parts, func(a, b int) bool {
		if parts[a].vur != parts[b].vur {
			return parts[a].vur
		}
		return parts[a].value < parts[b].value
	})
	if cut > len(parts) {
		cut = len(parts)
	}
	sum := 0.0
	for _, p := range parts[cut:] {
		sum += p.value
	}
	return sum
}

func (d *Data) fullBuchholz(i int) float64 {
	if d.bh == nil {
		d.bh = make([]float64, len(d.Players))
		for j := range d.Players {
			d.bh[j] = d.buchholz(j, 0)
		}
	}
	return d.bh[i]
}

func perPlayer(group []int, fn func(i int) float64) []float64 {
	ret := make([]float64, len(group))
	for k, i := range group {
		ret[k] = fn(i)
	}
	return ret
}

// Buchholz is the sum of opponents' scores, optionally dropping the Cut
// lowest contributions.
type Buchholz struct {
	Cut int
}

func (b Buchholz) Code() string {
	if b.Cut == 0 {
		return "BH"
	}
	return fmt.Sprintf("BH/C%d", b.Cut)
}

func (b Buchholz) Name() string {
	if b.Cut == 0 {
		return "Buchholz"
	}
	return fmt.Sprintf("Buchholz Cut %d", b.Cut)
}

func (b Buchholz) Values(d *Data, group []int) []float64 {
	return perPlayer(group, func(i int) float64 { return d.buchholz(i, b.Cut) })
}

// DirectEncounter is the score obtained against the other tied players. It
// only separates a group whose members have all met one another.
type DirectEncounter struct{}

func (DirectEncounter) Code() string { return "DE" }
func (DirectEncounter) Name() string { return "Direct Encounter" }

func (DirectEncounter) Values(d *Data, group []int) []float64 {
	ret := make([]float64, len(group))
	if len(group) < 2 {
		return ret
	}
	members := make(map[int]bool, len(group))
	for _, i := range group {
		members[i] = true
	}
	for k, i := range group {
		met := make(map[int]bool)
		for _, s := range d.Slots(i) {
			if opp, ok := d.opponent(s); ok && members[opp] {
				met[opp] = true
				ret[k] += s.Outcome.Points()
			}
		}
		if len(met) != len(group)-1 {
			return make([]float64, len(group))
		}
	}
	return ret
}

// Wins counts rounds worth a full point, with or without playing.
type Wins struct{}

func (Wins) Code() string { return "WIN" }
func (Wins) Name() string { return "Number of Wins" }

func (Wins) Values(d *Data, group []int) []float64 {
	return perPlayer(group, func(i int) float64 {
		n := 0
		for _, s := range d.Slots(i) {
			if s.Outcome.IsWin() {
				n++
			}
		}
		return float64(n)
	})
}

// GamesWon counts games won over the board.
type GamesWon struct{}

func (GamesWon) Code() string { return "WON" }
func (GamesWon) Name() string { return "Games Won" }

func (GamesWon) Values(d *Data, group []int) []float64 {
	return perPlayer(group, func(i int) float64 {
		n := 0
		for _, s := range d.Slots(i) {
			if s.Outcome.Played() && s.Outcome.IsWin() {
				n++
			}
		}
		return float64(n)
	})
}

// BlackGames counts games played with the black pieces.
type BlackGames struct{}

func (BlackGames) Code() string { return "BPG" }
func (BlackGames) Name() string { return "Games Played with Black" }

func (BlackGames) Values(d *Data, group []int) []float64 {
	return perPlayer(group, func(i int) float64 {
		n := 0
		for _, s := range d.Slots(i) {
			if s.Outcome.Played() && s.Color == tournament.Black {
				n++
			}
		}
		return float64(n)
	})
}

// AverageOpponentBuchholz averages the Buchholz of opponents actually
// played, rounded to two decimals.
type AverageOpponentBuchholz struct{}

func (AverageOpponentBuchholz) Code() string { return "AOB" }
func (AverageOpponentBuchholz) Name() string { return "Average Buchholz of Opponents" }

func (AverageOpponentBuchholz) Values(d *Data, group []int) []float64 {
	return perPlayer(group, func(i int) float64 {
		sum, n := 0.0, 0
		for _, s := range d.Slots(i) {
			if opp, ok := d.opponent(s); ok && s.Outcome.Played() {
				sum += d.fullBuchholz(opp)
				n++
			}
		}
		if n == 0 {
			return 0
		}
		return math.Round(sum/float64(n)*100) / 100
	})
}

// SonnebornBerger sums the scores of beaten opponents and half the scores of
// opponents drawn against.
type SonnebornBerger struct{}

func (SonnebornBerger) Code() string { return "SB" }
func (SonnebornBerger) Name() string { return "Sonneborn-Berger" }

func (SonnebornBerger) Values(d *Data, group []int) []float64 {
	return perPlayer(group, func(i int) float64 {
		sum := 0.0
		for _, s := range d.Slots(i) {
			if opp, ok := d.opponent(s); ok && s.Outcome.Played() {
				sum += s.Outcome.Points() * d.adjusted[opp]
			}
		}
		return sum
	})
}

// ParseTiebreaks parses a comma separated list of tie-break codes such as
// "BH/C1,BH,DE,WIN". "PTS" is accepted and ignored since points always rank
// first.
func ParseTiebreaks(s string) ([]Tiebreak, error) {
	var ret []Tiebreak
	for _, field := range strings.Split(s, ",") {
		code := strings.ToUpper(strings.TrimSpace(field))
		switch {
		case code == "" || code == "PTS":
			continue
		case code == "BH":
			ret = append(ret, Buchholz{})
		case strings.HasPrefix(code, "BH/C"):
			n, err := strconv.Atoi(strings.TrimPrefix(code, "BH/C"))
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid buchholz cut %q", field)
			}
			ret = append(ret, Buchholz{Cut: n})
		case code == "DE":
			ret = append(ret, DirectEncounter{})
		case code == "WIN":
			ret = append(ret, Wins{})
		case code == "WON":
			ret = append(ret, GamesWon{})
		case code == "BPG":
			ret = append(ret, BlackGames{})
		case code == "AOB":
			ret = append(ret, AverageOpponentBuchholz{})
		case code == "SB":
			ret = append(ret, SonnebornBerger{})
		default:
			return nil, fmt.Errorf("unknown tie-break %q", field)
		}
	}
	return ret, nil
}
