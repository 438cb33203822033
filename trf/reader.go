/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package trf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/mikeb26/swisstd/internal"
	"github.com/mikeb26/swisstd/tournament"
)

type rawSlot struct {
	opp   int
	color rune
	code  rune
}

func (s rawSlot) blank() bool {
	return s.opp == 0 && s.code == ' '
}

type rawPlayer struct {
	id    tournament.Identity
	line  int
	slots []rawSlot
}

type parser struct {
	info         tournament.Info
	extras       []string
	totalRounds  int
	initialColor tournament.Color
	declared     int
	declaredLine int
	dates        []string
	players      []*rawPlayer
	byRank       map[int]*rawPlayer
}

// ParseFile reads a report from path.
func ParseFile(path string) (*tournament.Tournament, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a tournament report. On failure the returned error is a
// *FormatError unless reading itself failed.
func Parse(r io.Reader) (*tournament.Tournament, error) {
	p := &parser{
		declared: -1,
		byRank:   make(map[int]*rawPlayer),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimRight(scanner.Text(), "\r")
		if lineNo == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if err := p.readLine(lineNo, []rune(text)); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("trf.Parse: %w", err)
	}

	return p.build()
}

func field(line []rune, start int, end int) string {
	if start >= len(line) {
		return ""
	}
	end = min(end, len(line))
	return strings.TrimSpace(string(line[start:end]))
}

func (p *parser) readLine(lineNo int, line []rune) error {
	code := string(line[:min(3, len(line))])
	value := field(line, 4, len(line))

	switch code {
	case codePlayer:
		return p.readPlayer(lineNo, line)
	case codeName:
		p.info.Name = value
	case codeCity:
		p.info.City = value
	case codeFederation:
		p.info.Federation = value
	case codeStartDate:
		p.info.StartDate = value
	case codeEndDate:
		p.info.EndDate = value
	case codeType:
		p.info.Type = value
	case codeChiefArbiter:
		p.info.ChiefArbiter = value
	case codeDeputyArbiter:
		p.info.DeputyArbiter = value
	case codeTimeControl:
		p.info.TimeControl = value
	case codeRatedCount:
		// derived from the player records
	case codePlayerCount:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return formatErrorf(lineNo, "number of players", "%q: %w", value,
				ErrMalformed)
		}
		p.declared = n
		p.declaredLine = lineNo
	case codeRounds:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return formatErrorf(lineNo, "number of rounds", "%q: %w", value,
				ErrMalformed)
		}
		p.totalRounds = n
	case codeInitialColor:
		if !p.readInitialColor(value) {
			p.extras = append(p.extras, string(line))
		}
	case codeCalendar:
		return p.readDates(lineNo, line)
	default:
		p.extras = append(p.extras, string(line))
	}

	return nil
}

func (p *parser) readInitialColor(value string) bool {
	for _, tok := range strings.Fields(strings.ToLower(value)) {
		switch tok {
		case "white1":
			p.initialColor = tournament.White
			return true
		case "black1":
			p.initialColor = tournament.Black
			return true
		}
	}
	return false
}

func (p *parser) readDates(lineNo int, line []rune) error {
	for i := 0; ; i++ {
		start := colFirstSlot + slotStride*i
		if start >= len(line) {
			break
		}
		date := field(line, start, start+slotWidth)
		if date != "" && internal.ParseDateOrZero(date).IsZero() {
			return formatErrorf(lineNo, "round dates", "round %d: %q: %w", i+1,
				date, ErrMalformed)
		}
		p.dates = append(p.dates, date)
	}
	return nil
}

func (p *parser) readPlayer(lineNo int, line []rune) error {
	rankStr := field(line, colRank, colRank+4)
	rank, err := strconv.Atoi(rankStr)
	if err != nil || rank <= 0 {
		return formatErrorf(lineNo, "starting rank", "%q: %w", rankStr,
			ErrMalformed)
	}
	if _, ok := p.byRank[rank]; ok {
		return &FormatError{Line: lineNo, Field: "starting rank",
			Err: fmt.Errorf("rank %d: %w", rank, tournament.ErrDuplicateRank)}
	}

	rp := &rawPlayer{line: lineNo}
	rp.id = tournament.Identity{
		StartingRank: rank,
		Sex:          tournament.ParseSex(field(line, colSex, colSex+1)),
		Name:         field(line, colName, colName+nameWidth),
		Federation:   field(line, colFed, colFed+3),
		FideID:       field(line, colID, colID+11),
		BirthDate:    field(line, colBirth, colBirth+10),
	}
	// unknown titles are tolerated and dropped
	rp.id.Title, _ = tournament.ParseTitle(field(line, colTitle, colTitle+3))
	if s := field(line, colRating, colRating+4); s != "" {
		rp.id.FideRating, err = strconv.Atoi(s)
		if err != nil {
			return formatErrorf(lineNo, "rating", "%q: %w", s, ErrMalformed)
		}
	}

	for i := 0; ; i++ {
		start := colFirstSlot + slotStride*i
		if start >= len(line) {
			break
		}
		seg := []rune(strings.Repeat(" ", slotWidth))
		copy(seg, line[start:min(start+slotWidth, len(line))])
		slot, err := readSlot(seg)
		if err != nil {
			return &FormatError{Line: lineNo, Field: fmt.Sprintf("round %d", i+1),
				Err: err}
		}
		rp.slots = append(rp.slots, slot)
	}
	for len(rp.slots) > 0 && rp.slots[len(rp.slots)-1].blank() {
		rp.slots = rp.slots[:len(rp.slots)-1]
	}

	p.players = append(p.players, rp)
	p.byRank[rank] = rp

	return nil
}

func readSlot(seg []rune) (rawSlot, error) {
	var s rawSlot
	opp := strings.TrimSpace(string(seg[0:4]))
	if opp != "" && opp != "0000" {
		n, err := strconv.Atoi(opp)
		if err != nil || n <= 0 {
			return s, fmt.Errorf("opponent %q: %w", opp, ErrMalformed)
		}
		s.opp = n
	}
	s.color = unicode.ToLower(seg[5])
	s.code = unicode.ToUpper(seg[7])

	if s.opp == 0 {
		if _, ok := byeCodes[s.code]; !ok {
			return s, fmt.Errorf("result %q without an opponent: %w",
				string(s.code), ErrMalformed)
		}
		return s, nil
	}
	if s.color != 'w' && s.color != 'b' {
		return s, fmt.Errorf("color %q: %w", string(seg[5]), ErrMalformed)
	}
	if _, ok := gameCodes[s.code]; !ok {
		return s, fmt.Errorf("result %q: %w", string(s.code), ErrMalformed)
	}

	return s, nil
}

func (p *parser) build() (*tournament.Tournament, error) {
	if p.declared >= 0 && p.declared != len(p.players) {
		return nil, formatErrorf(p.declaredLine, "number of players",
			"declares %d players but %d are listed: %w", p.declared,
			len(p.players), ErrMalformed)
	}
	sort.Slice(p.players, func(i, j int) bool {
		return p.players[i].id.StartingRank < p.players[j].id.StartingRank
	})

	played := 0
	for _, rp := range p.players {
		played = max(played, len(rp.slots))
	}
	// trailing rounds holding nothing but bye requests are not yet paired
	paired := played
	for paired > 0 && p.requestsOnly(paired) {
		paired--
	}
	t := tournament.New(p.info, max(p.totalRounds, played))
	t.SetExtras(p.extras)
	for _, rp := range p.players {
		if _, err := t.AddPlayer(rp.id); err != nil {
			return nil, &FormatError{Line: rp.line, Err: err}
		}
	}
	if p.initialColor != tournament.ColorNone {
		if err := t.SetInitialColor(p.initialColor); err != nil {
			return nil, &FormatError{Err: err}
		}
	}

	for r := 1; r <= paired; r++ {
		scores := make(map[int]float64, len(p.players))
		for _, pl := range t.Players() {
			scores[pl.StartingRank] = pl.Score
		}
		round, err := p.buildRound(r, paired, scores)
		if err != nil {
			return nil, err
		}
		if r == 1 && p.initialColor == tournament.ColorNone &&
			len(round.Pairings) > 0 {

			first := round.Pairings[0]
			c := tournament.White
			if first.White > first.Black {
				c = tournament.Black
			}
			if err := t.SetInitialColor(c); err != nil {
				return nil, &FormatError{Err: err}
			}
		}
		if err := t.AddRound(round); err != nil {
			return nil, &FormatError{Field: fmt.Sprintf("round %d", r), Err: err}
		}
	}

	for r := paired + 1; r <= played; r++ {
		for _, rp := range p.players {
			if r > len(rp.slots) {
				continue
			}
			kind := byeCodes[rp.slots[r-1].code]
			if !kind.Requestable() {
				continue
			}
			if err := t.SetRequestedBye(rp.id.StartingRank, r, kind); err != nil {
				return nil, &FormatError{Line: rp.line,
					Field: fmt.Sprintf("round %d", r), Err: err}
			}
		}
	}

	return t, nil
}

// requestsOnly reports whether round r has no game and no pairing bye.
func (p *parser) requestsOnly(r int) bool {
	for _, rp := range p.players {
		if r > len(rp.slots) {
			continue
		}
		s := rp.slots[r-1]
		if s.opp != 0 {
			return false
		}
		if kind := byeCodes[s.code]; kind != tournament.ByeNotPaired &&
			!kind.Requestable() {
			return false
		}
	}
	return true
}

func (p *parser) buildRound(r int, played int,
	scores map[int]float64) (tournament.Round, error) {

	round := tournament.Round{Number: r}
	if r <= len(p.dates) {
		round.Date = p.dates[r-1]
	}
	roundField := fmt.Sprintf("round %d", r)

	for _, rp := range p.players {
		if r > len(rp.slots) {
			continue
		}
		rank := rp.id.StartingRank
		s := rp.slots[r-1]
		if s.opp == 0 {
			kind := byeCodes[s.code]
			if kind != tournament.ByeNotPaired {
				round.Byes = append(round.Byes, tournament.Bye{Player: rank,
					Kind: kind})
			}
			continue
		}

		opp, ok := p.byRank[s.opp]
		if !ok {
			return round, formatErrorf(rp.line, roundField, "opponent %d: %w",
				s.opp, tournament.ErrNoSuchPlayer)
		}
		if s.opp == rank || r > len(opp.slots) ||
			opp.slots[r-1].opp != rank || opp.slots[r-1].color == s.color {

			return round, formatErrorf(rp.line, roundField, "rank %d vs %d: %w",
				rank, s.opp, ErrUnpairedOpponent)
		}
		if s.color != 'w' {
			continue
		}

		theirs := opp.slots[r-1]
		res, ok := tournament.ResultFromOutcomes(gameCodes[s.code],
			gameCodes[theirs.code])
		if !ok {
			return round, formatErrorf(rp.line, roundField,
				"results %q and %q do not agree: %w", string(s.code),
				string(theirs.code), ErrMalformed)
		}
		if res == tournament.ResultUnset && r < played {
			return round, formatErrorf(rp.line, roundField,
				"no result although later rounds were played: %w", ErrMalformed)
		}
		round.Pairings = append(round.Pairings, tournament.Pairing{
			White:  rank,
			Black:  s.opp,
			Result: res,
		})
	}
	tournament.OrderBoards(round.Pairings, func(rank int) float64 {
		return scores[rank]
	})

	return round, nil
}
