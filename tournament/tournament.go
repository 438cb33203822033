/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tournament

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
)

// Info is the descriptive header of a tournament.
type Info struct {
	Name          string
	City          string
	Federation    string
	StartDate     string
	EndDate       string
	Type          string
	ChiefArbiter  string
	DeputyArbiter string
	TimeControl   string
}

// State is the life cycle stage derived from the paired rounds.
type State int

const (
	StateCreated State = iota
	StateInProgress
	StateRoundComplete
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInProgress:
		return "in progress"
	case StateRoundComplete:
		return "round complete"
	default:
		return "finished"
	}
}

// Tournament is the authoritative state of one Swiss tournament. It owns its
// players and rounds; accessors hand out copies. All methods are safe for
// concurrent use and each mutation either fully applies or leaves the
// tournament unchanged.
type Tournament struct {
	mu sync.Mutex

	info         Info
	totalRounds  int
	initialColor Color
	// players is ordered by starting rank
	players []Player
	byRank  map[int]int
	rounds  []Round
	// requested maps round -> starting rank -> bye kind for rounds not yet
	// paired
	requested map[int]map[int]ByeKind
	// extras are header records this package does not interpret
	extras []string
}

// New creates an empty tournament of totalRounds rounds. Fewer than one
// round is raised to one.
func New(info Info, totalRounds int) *Tournament {
	totalRounds = max(totalRounds, 1)
	return &Tournament{
		info:         info,
		totalRounds:  totalRounds,
		initialColor: White,
		byRank:       make(map[int]int),
		requested:    make(map[int]map[int]ByeKind),
	}
}

func (t *Tournament) Info() Info {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.info
}

func (t *Tournament) SetInfo(info Info) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.info = info
}

// Extras returns uninterpreted header records in their original order.
func (t *Tournament) Extras() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.extras)
}

func (t *Tournament) SetExtras(extras []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.extras = slices.Clone(extras)
}

func (t *Tournament) TotalRounds() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalRounds
}

// SetTotalRounds changes the number of rounds to be played. It cannot drop
// below the rounds already paired.
func (t *Tournament) SetTotalRounds(n int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n < 1 || n < len(t.rounds) {
		return fmt.Errorf("tournament.SetTotalRounds: %d rounds with %d already paired: %w",
			n, len(t.rounds), ErrInvalidState)
	}
	t.totalRounds = n
	for r := range t.requested {
		if r > n {
			delete(t.requested, r)
		}
	}
	return nil
}

// InitialColor is the color given to the top seed in round 1.
func (t *Tournament) InitialColor() Color {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.initialColor
}

func (t *Tournament) SetInitialColor(c Color) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if c != White && c != Black {
		return fmt.Errorf("tournament.SetInitialColor: %v is not a color", c)
	}
	if len(t.rounds) > 0 {
		return fmt.Errorf("tournament.SetInitialColor: already started: %w",
			ErrInvalidState)
	}
	t.initialColor = c
	return nil
}

func (t *Tournament) state() State {
	n := len(t.rounds)
	switch {
	case n == 0:
		return StateCreated
	case !t.rounds[n-1].Complete():
		return StateInProgress
	case n >= t.totalRounds:
		return StateFinished
	default:
		return StateRoundComplete
	}
}

// State reports where the tournament is in its life cycle.
func (t *Tournament) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state()
}

// CurrentRoundNumber is the number of the latest paired round, 0 before the
// first round is paired.
func (t *Tournament) CurrentRoundNumber() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rounds)
}

// IsComplete reports whether every round has been paired and scored.
func (t *Tournament) IsComplete() bool {
	return t.State() == StateFinished
}

// Started reports whether any round has been paired.
func (t *Tournament) Started() bool {
	return t.CurrentRoundNumber() > 0
}

func (t *Tournament) PlayerCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.players)
}

// RatedPlayerCount counts players with a FIDE rating.
func (t *Tournament) RatedPlayerCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, p := range t.players {
		if p.Rated() {
			n++
		}
	}
	return n
}

// Players returns copies of all players ordered by starting rank.
func (t *Tournament) Players() []Player {
	t.mu.Lock()
	defer t.mu.Unlock()

	ret := make([]Player, len(t.players))
	for i, p := range t.players {
		ret[i] = p.clone()
	}
	return ret
}

// Player returns a copy of the player with the given starting rank.
func (t *Tournament) Player(rank int) (Player, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, ok := t.byRank[rank]
	if !ok {
		return Player{}, fmt.Errorf("tournament.Player: rank %d: %w", rank,
			ErrNoSuchPlayer)
	}
	return t.players[idx].clone(), nil
}

// Rounds returns copies of all paired rounds.
func (t *Tournament) Rounds() []Round {
	t.mu.Lock()
	defer t.mu.Unlock()

	ret := make([]Round, len(t.rounds))
	for i, r := range t.rounds {
		ret[i] = r.clone()
	}
	return ret
}

// Round returns a copy of round n (1-based).
func (t *Tournament) Round(n int) (Round, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n < 1 || n > len(t.rounds) {
		return Round{}, fmt.Errorf("tournament.Round: round %d of %d: %w", n,
			len(t.rounds), ErrNoSuchRound)
	}
	return t.rounds[n-1].clone(), nil
}

// AddPlayer registers a player and returns the starting rank assigned. A
// zero StartingRank is replaced by the next free rank. Once play has begun a
// player may only join between rounds; the rounds already played are
// recorded as not paired for them.
func (t *Tournament) AddPlayer(id Identity) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state() {
	case StateInProgress:
		return 0, fmt.Errorf("tournament.AddPlayer: round %d in progress: %w",
			len(t.rounds), ErrInvalidState)
	case StateFinished:
		return 0, fmt.Errorf("tournament.AddPlayer: finished: %w", ErrInvalidState)
	}
	if id.StartingRank < 0 {
		return 0, fmt.Errorf("tournament.AddPlayer: negative starting rank %d",
			id.StartingRank)
	}
	if id.StartingRank == 0 {
		id.StartingRank = 1
		if n := len(t.players); n > 0 {
			id.StartingRank = t.players[n-1].StartingRank + 1
		}
	}
	if _, ok := t.byRank[id.StartingRank]; ok {
		return 0, fmt.Errorf("tournament.AddPlayer: rank %d: %w",
			id.StartingRank, ErrDuplicateRank)
	}
	id.Name = strings.TrimSpace(id.Name)

	t.players = append(t.players, Player{Identity: id})
	sort.SliceStable(t.players, func(i, j int) bool {
		return t.players[i].StartingRank < t.players[j].StartingRank
	})
	t.rebuild()

	return id.StartingRank, nil
}

// RemovePlayer drops a player. It fails once any round has been paired; use
// Withdraw instead.
func (t *Tournament) RemovePlayer(rank int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.rounds) > 0 {
		return fmt.Errorf("tournament.RemovePlayer: already started: %w",
			ErrInvalidState)
	}
	idx, ok := t.byRank[rank]
	if !ok {
		return fmt.Errorf("tournament.RemovePlayer: rank %d: %w", rank,
			ErrNoSuchPlayer)
	}
	t.players = slices.Delete(t.players, idx, idx+1)
	for _, reqs := range t.requested {
		delete(reqs, rank)
	}
	t.rebuild()

	return nil
}

// UpdatePlayer applies fn to a copy of the player's identity and stores the
// result. The starting rank cannot be changed this way.
func (t *Tournament) UpdatePlayer(rank int, fn func(id *Identity)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, ok := t.byRank[rank]
	if !ok {
		return fmt.Errorf("tournament.UpdatePlayer: rank %d: %w", rank,
			ErrNoSuchPlayer)
	}
	id := t.players[idx].Identity
	fn(&id)
	id.StartingRank = rank
	id.Name = strings.TrimSpace(id.Name)
	t.players[idx].Identity = id

	return nil
}

// SortPlayers re-ranks players by rating, then title, then name. It is only
// allowed before the first round.
func (t *Tournament) SortPlayers() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.rounds) > 0 {
		return fmt.Errorf("tournament.SortPlayers: already started: %w",
			ErrInvalidState)
	}
	sort.SliceStable(t.players, func(i, j int) bool {
		a, b := t.players[i], t.players[j]
		if a.Rating() != b.Rating() {
			return a.Rating() > b.Rating()
		}
		if a.Title.Strength() != b.Title.Strength() {
			return a.Title.Strength() < b.Title.Strength()
		}
		return a.Name < b.Name
	})
	renumber := make(map[int]int, len(t.players))
	for i := range t.players {
		renumber[t.players[i].StartingRank] = i + 1
		t.players[i].StartingRank = i + 1
	}
	for r, reqs := range t.requested {
		moved := make(map[int]ByeKind, len(reqs))
		for rank, kind := range reqs {
			moved[renumber[rank]] = kind
		}
		t.requested[r] = moved
	}
	t.rebuild()

	return nil
}

// AddRound appends the next round. Players not mentioned in the round are
// recorded as not paired. Boards are renumbered in the given order.
func (t *Tournament) AddRound(r Round) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.state()
	if st != StateCreated && st != StateRoundComplete {
		return fmt.Errorf("tournament.AddRound: tournament is %v: %w", st,
			ErrInvalidState)
	}
	next := len(t.rounds) + 1
	if r.Number == 0 {
		r.Number = next
	}
	if r.Number != next {
		return fmt.Errorf("tournament.AddRound: round %d is not the next round %d: %w",
			r.Number, next, ErrInvalidState)
	}
	if next > t.totalRounds {
		return fmt.Errorf("tournament.AddRound: round %d exceeds %d rounds: %w",
			next, t.totalRounds, ErrInvalidState)
	}
	r = r.clone()
	if err := t.validateRound(r); err != nil {
		return fmt.Errorf("tournament.AddRound: round %d: %w", r.Number, err)
	}
	for i := range r.Pairings {
		r.Pairings[i].Board = i + 1
	}
	sort.SliceStable(r.Byes, func(i, j int) bool {
		return r.Byes[i].Player < r.Byes[j].Player
	})

	t.rounds = append(t.rounds, r)
	delete(t.requested, r.Number)
	t.rebuild()

	return nil
}

func (t *Tournament) validateRound(r Round) error {
	seen := make(map[int]bool)
	claim := func(rank int) error {
		if _, ok := t.byRank[rank]; !ok {
			return fmt.Errorf("rank %d: %w", rank, ErrNoSuchPlayer)
		}
		if seen[rank] {
			return fmt.Errorf("rank %d appears twice: %w", rank, ErrInvalidRound)
		}
		seen[rank] = true
		return nil
	}

	for _, p := range r.Pairings {
		if p.White == p.Black {
			return fmt.Errorf("rank %d paired against itself: %w", p.White,
				ErrInvalidRound)
		}
		if err := claim(p.White); err != nil {
			return err
		}
		if err := claim(p.Black); err != nil {
			return err
		}
		if p.Result < ResultUnset || p.Result > ResultDoubleLoss {
			return fmt.Errorf("board %d: %w", p.Board, ErrInvalidResult)
		}
		if t.players[t.byRank[p.White]].HasMet(p.Black) {
			return fmt.Errorf("ranks %d and %d already met: %w", p.White,
				p.Black, ErrInvalidRound)
		}
	}
	pairingByes := 0
	for _, b := range r.Byes {
		if err := claim(b.Player); err != nil {
			return err
		}
		if b.Kind < ByePairing || b.Kind > ByeNotPaired {
			return fmt.Errorf("rank %d: unknown bye kind %d: %w", b.Player,
				b.Kind, ErrInvalidRound)
		}
		if b.Kind == ByePairing {
			pairingByes++
		}
	}
	if pairingByes > 1 {
		return fmt.Errorf("%d pairing byes: %w", pairingByes, ErrInvalidRound)
	}

	return nil
}

// RecordResult sets the result of the given board of the current round.
// Earlier rounds are closed and cannot be changed.
func (t *Tournament) RecordResult(round int, board int, res Result) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if round < 1 || round != len(t.rounds) {
		return fmt.Errorf("tournament.RecordResult: round %d is not the current round %d: %w",
			round, len(t.rounds), ErrInvalidState)
	}
	if res < ResultUnset || res > ResultDoubleLoss {
		return fmt.Errorf("tournament.RecordResult: %w", ErrInvalidResult)
	}
	r := &t.rounds[round-1]
	for i := range r.Pairings {
		if r.Pairings[i].Board == board {
			r.Pairings[i].Result = res
			t.rebuild()
			return nil
		}
	}

	return fmt.Errorf("tournament.RecordResult: round %d board %d: %w", round,
		board, ErrNoSuchPairing)
}

// UnpairCurrentRound discards the latest round provided no result has been
// recorded in it yet.
func (t *Tournament) UnpairCurrentRound() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.rounds)
	if n == 0 {
		return fmt.Errorf("tournament.UnpairCurrentRound: nothing paired: %w",
			ErrInvalidState)
	}
	for _, p := range t.rounds[n-1].Pairings {
		if p.Result != ResultUnset {
			return fmt.Errorf("tournament.UnpairCurrentRound: round %d board %d has a result: %w",
				n, p.Board, ErrInvalidState)
		}
	}
	// requested byes survive so that re-pairing honours them
	reqs := make(map[int]ByeKind)
	for _, b := range t.rounds[n-1].Byes {
		if b.Kind.Requestable() {
			reqs[b.Player] = b.Kind
		}
	}
	if len(reqs) > 0 {
		t.requested[n] = reqs
	}
	t.rounds = t.rounds[:n-1]
	t.rebuild()

	return nil
}

// SetRequestedBye records that a player will sit out a future round.
func (t *Tournament) SetRequestedBye(rank int, round int, kind ByeKind) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !kind.Requestable() {
		return fmt.Errorf("tournament.SetRequestedBye: %v cannot be requested",
			kind)
	}
	if _, ok := t.byRank[rank]; !ok {
		return fmt.Errorf("tournament.SetRequestedBye: rank %d: %w", rank,
			ErrNoSuchPlayer)
	}
	if round <= len(t.rounds) || round > t.totalRounds {
		return fmt.Errorf("tournament.SetRequestedBye: round %d is not a future round: %w",
			round, ErrInvalidState)
	}
	if t.requested[round] == nil {
		t.requested[round] = make(map[int]ByeKind)
	}
	t.requested[round][rank] = kind

	return nil
}

// ClearRequestedBye withdraws a bye request for a future round.
func (t *Tournament) ClearRequestedBye(rank int, round int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if round <= len(t.rounds) {
		return fmt.Errorf("tournament.ClearRequestedBye: round %d already paired: %w",
			round, ErrInvalidState)
	}
	delete(t.requested[round], rank)
	return nil
}

// RequestedByes lists bye requests for a round ordered by starting rank.
func (t *Tournament) RequestedByes(round int) []Bye {
	t.mu.Lock()
	defer t.mu.Unlock()

	reqs := t.requested[round]
	ret := make([]Bye, 0, len(reqs))
	for _, rank := range slices.Sorted(maps.Keys(reqs)) {
		ret = append(ret, Bye{Player: rank, Kind: reqs[rank]})
	}
	return ret
}

// Withdraw gives a player zero-point byes for every remaining round.
func (t *Tournament) Withdraw(rank int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.byRank[rank]; !ok {
		return fmt.Errorf("tournament.Withdraw: rank %d: %w", rank,
			ErrNoSuchPlayer)
	}
	if t.state() == StateFinished {
		return fmt.Errorf("tournament.Withdraw: finished: %w", ErrInvalidState)
	}
	for r := len(t.rounds) + 1; r <= t.totalRounds; r++ {
		if t.requested[r] == nil {
			t.requested[r] = make(map[int]ByeKind)
		}
		t.requested[r][rank] = ByeZero
	}
	return nil
}

// Snapshot returns an independent deep copy, suitable for handing to a
// worker goroutine.
func (t *Tournament) Snapshot() *Tournament {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := &Tournament{
		info:         t.info,
		totalRounds:  t.totalRounds,
		initialColor: t.initialColor,
		players:      make([]Player, len(t.players)),
		byRank:       maps.Clone(t.byRank),
		rounds:       make([]Round, len(t.rounds)),
		requested:    make(map[int]map[int]ByeKind, len(t.requested)),
		extras:       slices.Clone(t.extras),
	}
	for i, p := range t.players {
		s.players[i] = p.clone()
	}
	for i, r := range t.rounds {
		s.rounds[i] = r.clone()
	}
	for r, reqs := range t.requested {
		s.requested[r] = maps.Clone(reqs)
	}
	return s
}

// rebuild recomputes every player's derived state from the rounds. t.mu must
// be held.
func (t *Tournament) rebuild() {
	t.byRank = make(map[int]int, len(t.players))
	for i := range t.players {
		t.players[i].reset()
		t.byRank[t.players[i].StartingRank] = i
	}

	for _, r := range t.rounds {
		seen := make(map[int]bool, len(t.players))
		for _, p := range r.Pairings {
			w, b := p.Result.Outcomes()
			t.players[t.byRank[p.White]].record(Slot{Round: r.Number,
				Opponent: p.Black, Color: White, Outcome: w})
			t.players[t.byRank[p.Black]].record(Slot{Round: r.Number,
				Opponent: p.White, Color: Black, Outcome: b})
			seen[p.White] = true
			seen[p.Black] = true
		}
		for _, b := range r.Byes {
			t.players[t.byRank[b.Player]].record(Slot{Round: r.Number,
				Outcome: b.Kind.Outcome()})
			seen[b.Player] = true
		}
		for i := range t.players {
			if !seen[t.players[i].StartingRank] {
				t.players[i].record(Slot{Round: r.Number,
					Outcome: OutcomeNotPaired})
			}
		}
	}
}
