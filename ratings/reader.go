/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package ratings

import (
	"archive/zip"
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mikeb26/swisstd/internal"
	"github.com/mikeb26/swisstd/tournament"
)

type Format string

const (
	FormatAuto    Format = "auto"
	FormatFIDE    Format = "fide"
	FormatFIDEZip Format = "fide-zip"
	FormatHTML    Format = "html"
)

// ParseFormat accepts the names used in configuration; empty means auto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatFIDE, FormatFIDEZip, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnsupported)
	}
}

// DetectFormat guesses the format of a downloaded payload.
func DetectFormat(data []byte) Format {
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return FormatFIDEZip
	}
	head := bytes.ToLower(bytes.TrimSpace(data[:min(len(data), 512)]))
	if bytes.HasPrefix(head, []byte("<")) {
		return FormatHTML
	}
	return FormatFIDE
}

// Decode parses a payload of the given format.
func Decode(format Format, data []byte) ([]Record, error) {
	if format == FormatAuto || format == "" {
		format = DetectFormat(data)
	}
	switch format {
	case FormatFIDE:
		return ReadFIDE(bytes.NewReader(data))
	case FormatFIDEZip:
		return ReadZip(data)
	case FormatHTML:
		return ReadHTML(bytes.NewReader(data))
	default:
		return nil, &ParseError{Err: fmt.Errorf("%q: %w", format, ErrUnsupported)}
	}
}

// LoadFile builds a catalog from a rating list on disk.
func LoadFile(path string, format Format) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	recs, err := Decode(format, data)
	if err != nil {
		return nil, err
	}
	c := NewCatalog(path, recs)
	if fi, err := os.Stat(path); err == nil {
		c.LastFetched = fi.ModTime()
	}

	return c, nil
}

const fideLineLen = 162

// fideNumber parses a fixed-width numeric column; blank means zero.
func fideNumber(line []rune, start int, end int) (int, error) {
	s := strings.TrimSpace(string(line[start:end]))
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// ReadFIDE reads the fixed-width players_list format published by FIDE. The
// first line is a header. Lines too short to hold every column are skipped,
// as are lines whose id column is not numeric.
func ReadFIDE(r io.Reader) ([]Record, error) {
	log := internal.Logger("ratings")
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var ret []Record
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo == 1 {
			continue
		}
		line := []rune(strings.TrimRight(scanner.Text(), "\r"))
		if len(line) < fideLineLen {
			continue
		}
		id := strings.TrimSpace(string(line[0:15]))
		if _, err := strconv.Atoi(id); err != nil {
			log.Debugf("ratings.ReadFIDE: line %d: skipping id %q", lineNo, id)
			continue
		}

		rec := Record{
			ID:         id,
			Name:       strings.TrimSpace(string(line[15:76])),
			Federation: strings.TrimSpace(string(line[76:79])),
			Sex:        tournament.ParseSex(string(line[80:83])),
		}
		rec.Title, _ = tournament.ParseTitle(string(line[84:88]))
		for _, t := range strings.Split(string(line[94:109]), ",") {
			if t = strings.TrimSpace(t); t != "" {
				rec.OtherTitles = append(rec.OtherTitles, t)
			}
		}

		numbers := []struct {
			dst        *int
			start, end int
			name       string
		}{
			{&rec.Standard, 113, 117, "standard rating"},
			{&rec.StandardK, 123, 125, "standard k-factor"},
			{&rec.Rapid, 126, 130, "rapid rating"},
			{&rec.RapidK, 136, 138, "rapid k-factor"},
			{&rec.Blitz, 139, 143, "blitz rating"},
			{&rec.BlitzK, 149, 151, "blitz k-factor"},
			{&rec.BirthYear, 152, 156, "birth year"},
		}
		for _, n := range numbers {
			v, err := fideNumber(line, n.start, n.end)
			if err != nil {
				return nil, &ParseError{Line: lineNo,
					Err: fmt.Errorf("%s: %w", n.name, err)}
			}
			*n.dst = v
		}

		ret = append(ret, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Line: lineNo, Err: err}
	}
	if lineNo == 0 {
		return nil, &ParseError{Err: ErrEmptyList}
	}

	return ret, nil
}

// ReadZip reads a zipped players_list. The archive must hold exactly one
// file.
func ReadZip(data []byte) ([]Record, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(zr.File) != 1 {
		return nil, &ParseError{Err: fmt.Errorf("archive holds %d files: %w",
			len(zr.File), ErrUnsupported)}
	}
	f, err := zr.File[0].Open()
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	defer f.Close()

	return ReadFIDE(f)
}

// htmlColumn maps a header cell to the record field it holds.
func htmlColumn(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	switch h {
	case "id", "fide id", "fideid", "id number":
		return "id"
	case "name", "player":
		return "name"
	case "fed", "federation":
		return "fed"
	case "sex", "gender":
		return "sex"
	case "tit", "title":
		return "title"
	case "rtg", "rating", "std", "standard":
		return "std"
	case "rpd", "rapid":
		return "rapid"
	case "blz", "blitz":
		return "blitz"
	case "b-year", "born", "birth", "byear":
		return "born"
	}
	return ""
}

// ReadHTML reads the first table whose header row names an id column.
// Ratings published as web pages use this layout.
func ReadHTML(r io.Reader) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	var ret []Record
	found := false
	var parseErr error
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		if rows.Length() == 0 {
			return true
		}
		cols := make(map[string]int)
		rows.First().Find("th,td").Each(func(i int, cell *goquery.Selection) {
			if c := htmlColumn(cell.Text()); c != "" {
				cols[c] = i
			}
		})
		if _, ok := cols["id"]; !ok {
			return true
		}
		found = true

		rows.Slice(1, goquery.ToEnd).EachWithBreak(func(i int, row *goquery.Selection) bool {
			cells := row.Find("td")
			text := func(col string) string {
				idx, ok := cols[col]
				if !ok || idx >= cells.Length() {
					return ""
				}
				return strings.TrimSpace(cells.Eq(idx).Text())
			}
			id := text("id")
			if id == "" {
				return true
			}
			rec := Record{
				ID:         id,
				Name:       internal.NormalizeName(text("name"), false),
				Federation: text("fed"),
				Sex:        tournament.ParseSex(text("sex")),
			}
			rec.Title, _ = tournament.ParseTitle(text("title"))
			for _, n := range []struct {
				dst *int
				col string
			}{
				{&rec.Standard, "std"},
				{&rec.Rapid, "rapid"},
				{&rec.Blitz, "blitz"},
			} {
				s := text(n.col)
				if s == "" || s == "-" {
					continue
				}
				v, err := strconv.Atoi(s)
				if err != nil {
					parseErr = &ParseError{Line: i + 2,
						Err: fmt.Errorf("%s %q: %w", n.col, s, err)}
					return false
				}
				*n.dst = v
			}
			if born := internal.ParseDateOrZero(text("born")); !born.IsZero() {
				rec.BirthYear = born.Year()
			}
			ret = append(ret, rec)
			return true
		})
		return false
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if !found {
		return nil, &ParseError{Err: fmt.Errorf("no rating table: %w", ErrEmptyList)}
	}

	return ret, nil
}
