package ephem

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/mmap"

	"github.com/echoflaresat/eclipses/eclipse"
	"github.com/echoflaresat/eclipses/vectors"
)

// Table is a precomputed list of body states, one row per instant:
//
//	# time  sun(x y z)  emb(x y z)  earth(x y z)  moon(x y z)
//	2024-04-08T18:17:20Z  1.38e8 5.1e7 2.2e7  ...
//
// Times are RFC 3339, positions are km in one common frame. Blank lines
// and lines starting with '#' are ignored.
type Table struct {
	rows  []eclipse.BodySet
	index map[int64]int
}

const tableFields = 13

// LoadTable memory-maps and parses a state table file.
func LoadTable(path string) (*Table, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	t, err := ParseTable(io.NewSectionReader(reader, 0, int64(reader.Len())))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseTable reads a state table. Rows are sorted by instant; a repeated
// instant is an error.
func ParseTable(r io.Reader) (*Table, error) {
	t := &Table{index: make(map[int64]int)}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		set, err := parseRow(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		t.rows = append(t.rows, set)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(t.rows, func(i, j int) bool {
		return t.rows[i].Instant.Before(t.rows[j].Instant)
	})
	for i, set := range t.rows {
		key := set.Instant.UnixNano()
		if _, dup := t.index[key]; dup {
			return nil, fmt.Errorf("duplicate instant %s: %w", set.Instant.Format(time.RFC3339), ErrMalformedRow)
		}
		t.index[key] = i
	}
	return t, nil
}

func parseRow(text string) (eclipse.BodySet, error) {
	fields := strings.Fields(text)
	if len(fields) != tableFields {
		return eclipse.BodySet{}, fmt.Errorf("want %d fields, got %d: %w", tableFields, len(fields), ErrMalformedRow)
	}

	at, err := time.Parse(time.RFC3339Nano, fields[0])
	if err != nil {
		return eclipse.BodySet{}, fmt.Errorf("time %q: %w", fields[0], ErrMalformedRow)
	}

	var nums [tableFields - 1]float64
	for i, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return eclipse.BodySet{}, fmt.Errorf("field %d %q: %w", i+2, f, ErrMalformedRow)
		}
		nums[i] = v
	}

	vec := func(i int) vectors.Vec3 {
		return vectors.Vec3{X: nums[i], Y: nums[i+1], Z: nums[i+2]}
	}
	return eclipse.BodySet{
		Instant: at,
		Sun:     vec(0),
		EMB:     vec(3),
		Earth:   vec(6),
		Moon:    vec(9),
	}, nil
}

func (t *Table) Name() string { return "table" }

// State returns the row recorded for exactly t.
func (t *Table) State(at time.Time) (eclipse.BodySet, error) {
	i, ok := t.index[at.UnixNano()]
	if !ok {
		return eclipse.BodySet{}, fmt.Errorf("%s: %w", at.Format(time.RFC3339Nano), ErrNotFound)
	}
	return t.rows[i], nil
}

// Instants returns the row instants in ascending order.
func (t *Table) Instants() []time.Time {
	out := make([]time.Time, len(t.rows))
	for i, set := range t.rows {
		out[i] = set.Instant
	}
	return out
}

// Sets returns a copy of the rows in ascending instant order.
func (t *Table) Sets() []eclipse.BodySet {
	out := make([]eclipse.BodySet, len(t.rows))
	copy(out, t.rows)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// WriteTable writes sets in the format ParseTable reads.
func WriteTable(w io.Writer, sets []eclipse.BodySet) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# time sun_x sun_y sun_z emb_x emb_y emb_z earth_x earth_y earth_z moon_x moon_y moon_z (km)")
	for _, s := range sets {
		fmt.Fprint(bw, s.Instant.UTC().Format(time.RFC3339Nano))
		for _, v := range []vectors.Vec3{s.Sun, s.EMB, s.Earth, s.Moon} {
			fmt.Fprintf(bw, " %s %s %s", formatKm(v.X), formatKm(v.Y), formatKm(v.Z))
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

func formatKm(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
