/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type harness struct {
	t    *testing.T
	cfg  string
	file string
}

func newHarness(t *testing.T) *harness {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "tdpair.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("log:\n  level: error\n"), 0o644))
	return &harness{t: t, cfg: cfg, file: filepath.Join(dir, "club.trf")}
}

func (h *harness) run(args ...string) (string, error) {
	var buf bytes.Buffer
	argv := append([]string{"tdpair", "--config", h.cfg, "--file", h.file}, args...)
	err := newApp(&buf).Run(argv)
	return buf.String(), err
}

func (h *harness) must(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "tdpair %v", strings.Join(args, " "))
	return out
}

func TestRunTournament(t *testing.T) {
	h := newHarness(t)
	h.must("new", "--name", "Club Swiss", "--rounds", "3", "--city", "Boston")
	_, err := h.run("new", "--name", "Again", "--rounds", "3")
	assert.Error(t, err)

	for _, p := range []struct{ name, rating string }{
		{"Adams, Ann", "2000"},
		{"Brown,   Bob", "1900"},
		{"Cole, Cat", "1800"},
		{"Dunn, Dan", "1700"},
	} {
		h.must("add-player", "--name", p.name, "--rating", p.rating)
	}
	out := h.must("info")
	assert.Contains(t, out, "Club Swiss")
	assert.Contains(t, out, "Players: 4 (4 rated)")
	assert.Contains(t, out, "Round: 0 of 3 (created)")

	out = h.must("pair")
	assert.Contains(t, out, "Round 1 Pairings")
	assert.Contains(t, out, "Brown, Bob")

	_, err = h.run("pair")
	assert.Error(t, err)

	h.must("result", "--board", "1", "--result", "1-0")
	h.must("result", "--board", "2", "--result", "1/2-1/2")
	_, err = h.run("result", "--board", "9", "--result", "1-0")
	assert.Error(t, err)

	out = h.must("standings", "--format", "yaml")
	var rows []standingYAML
	require.NoError(t, yaml.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 4)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, 1.0, rows[0].Score)
	assert.Contains(t, rows[0].Tiebreaks, "BH")

	out = h.must("standings", "--format", "crosstable")
	assert.Contains(t, out, "Adams, Ann")
	_, err = h.run("standings", "--format", "html")
	assert.Error(t, err)

	h.must("bye", "--rank", "2", "--round", "2", "--kind", "half")
	_, err = h.run("bye", "--rank", "2", "--round", "2", "--kind", "double")
	assert.Error(t, err)

	saved, err := os.ReadFile(h.file)
	require.NoError(t, err)
	out = h.must("export")
	assert.Equal(t, string(saved), out)
	assert.Contains(t, out, "012 Club Swiss")

	out = h.must("pair")
	assert.Contains(t, out, "Round 2 Pairings")
	out = h.must("info")
	assert.Contains(t, out, "Round: 2 of 3 (in progress)")
}

func TestRatingsLoad(t *testing.T) {
	h := newHarness(t)
	h.must("new", "--name", "Rated", "--rounds", "5")
	h.must("add-player", "--name", "Carlsen, Magnus", "--fide-id", "1503014")
	out := h.must("info")
	assert.Contains(t, out, "Players: 1 (0 rated)")

	line := []rune(strings.Repeat(" ", 162))
	copy(line[0:], []rune("1503014"))
	copy(line[15:], []rune("Carlsen, Magnus"))
	copy(line[76:], []rune("NOR"))
	copy(line[113:], []rune("2833"))
	list := filepath.Join(t.TempDir(), "players_list.txt")
	require.NoError(t, os.WriteFile(list,
		[]byte("ID Number      Name\n"+string(line)+"\n"), 0o644))

	out = h.must("ratings", "load", "--list", list, "--format", "fide")
	assert.Contains(t, out, "updated 1 players")
	out = h.must("info")
	assert.Contains(t, out, "Players: 1 (1 rated)")

	out = h.must("ratings", "lookup", "--id", "1503014", "--list", list)
	assert.Contains(t, out, "Standard: 2833")

	_, err := h.run("ratings", "refresh")
	assert.Error(t, err)
}

func TestNoFile(t *testing.T) {
	h := newHarness(t)
	var buf bytes.Buffer
	err := newApp(&buf).Run([]string{"tdpair", "--config", h.cfg, "info"})
	assert.ErrorIs(t, err, errNoFile)
}
