// Package bsbcatalog parses BSB chart-catalog text files: the
// continuation-line, comma-joined K-line format BSB/KAP distributions
// ship alongside their raster charts.
package bsbcatalog

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Entry is one per-chart K-line record.
type Entry struct {
	ChartID string // filename stem, uppercased, extension stripped
	Title   string // NA=
	Type    string // TY=, "Base" or "Inset"
}

// ByChartID looks up a chart's K-line record by its uppercased
// filename stem.
func (c *Catalog) ByChartID(id string) (Entry, bool) {
	e, ok := c.Entries[strings.ToUpper(id)]
	return e, ok
}

// Catalog is the parsed contents of one BSB catalog file: per-chart
// entries keyed by chart ID, plus the global edition date recovered
// from NTM/ or CED/ lines.
type Catalog struct {
	Entries     map[string]Entry
	EditionDate string // YYYY-MM-DD, empty if neither NTM nor CED present
}

var kLineRe = regexp.MustCompile(`^K\d+/`)

// recordPrefixRe matches the leading record-id token ("K01/", "NTM/",
// "CED/", ...) that precedes the first key=value field on a joined
// catalog line. It must be stripped before field scanning, since the
// first field otherwise reads "K01/NA=Alpha Bay" rather than
// "NA=Alpha Bay" and a prefix-anchored key=value match never fires.
var recordPrefixRe = regexp.MustCompile(`^[A-Z]+\d*/`)

func stripRecordPrefix(line string) string {
	return recordPrefixRe.ReplaceAllString(line, "")
}

// Parse reads a Latin-1 encoded BSB catalog stream and returns its
// parsed entries.
func Parse(r io.Reader) (*Catalog, error) {
	decoded := charmap.ISO8859_1.NewDecoder().Reader(r)

	lines, err := joinContinuations(decoded)
	if err != nil {
		return nil, err
	}

	cat := &Catalog{Entries: make(map[string]Entry)}

	for _, line := range lines {
		switch {
		case kLineRe.MatchString(line):
			parseChartLine(line, cat)
		case strings.HasPrefix(line, "NTM/"):
			if d, ok := fieldValue(line, "ND"); ok {
				if iso, ok := mdyToISO(d); ok {
					cat.EditionDate = iso
				}
			}
		case strings.HasPrefix(line, "CED/"):
			if d, ok := fieldValue(line, "SE"); ok {
				if iso, ok := ymdToISO(d); ok && cat.EditionDate == "" {
					cat.EditionDate = iso
				}
			}
		}
	}

	return cat, nil
}

// joinContinuations merges any line beginning with whitespace into the
// previous line, separated by a comma, before field extraction runs.
func joinContinuations(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		raw := scanner.Text()
		if len(raw) > 0 && (raw[0] == ' ' || raw[0] == '\t') && len(lines) > 0 {
			lines[len(lines)-1] = lines[len(lines)-1] + "," + strings.TrimSpace(raw)
		} else {
			lines = append(lines, raw)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func parseChartLine(line string, cat *Catalog) {
	fields := strings.Split(stripRecordPrefix(line), ",")
	var title, typ, filename string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if v, ok := strings.CutPrefix(f, "NA="); ok {
			title = v
		} else if v, ok := strings.CutPrefix(f, "TY="); ok {
			typ = v
		} else if v, ok := strings.CutPrefix(f, "FN="); ok {
			filename = v
		}
	}
	if filename == "" {
		return
	}
	chartID := strings.ToUpper(stripKapExt(filename))
	cat.Entries[chartID] = Entry{ChartID: chartID, Title: title, Type: typ}
}

func stripKapExt(name string) string {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".kap") {
		return name[:len(name)-4]
	}
	return name
}

func fieldValue(line, key string) (string, bool) {
	for _, f := range strings.Split(stripRecordPrefix(line), ",") {
		f = strings.TrimSpace(f)
		if v, ok := strings.CutPrefix(f, key+"="); ok {
			return v, true
		}
	}
	return "", false
}

// mdyToISO converts MM/DD/YYYY to YYYY-MM-DD.
func mdyToISO(s string) (string, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return "", false
	}
	mm, dd, yyyy := parts[0], parts[1], parts[2]
	if len(mm) != 2 || len(dd) != 2 || len(yyyy) != 4 {
		return "", false
	}
	return fmt.Sprintf("%s-%s-%s", yyyy, mm, dd), true
}

// ymdToISO converts YYYYMMDD to YYYY-MM-DD.
func ymdToISO(s string) (string, bool) {
	if len(s) != 8 {
		return "", false
	}
	return fmt.Sprintf("%s-%s-%s", s[0:4], s[4:6], s[6:8]), true
}
