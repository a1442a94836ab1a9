package krholiday

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// OverrideSource supplies the literal holidays of a year. They are applied
// after every computed rule.
type OverrideSource interface {
	Overrides(year int) ([]Override, error)
}

// OverrideRecord is one row of an override CSV file:
//
//	date,name_local,name_en
//	2020-08-17,광복절 기념 (임시공휴일),Liberation Day Alternative Statutory Holiday
//
// Lines starting with '#' are comments.
type OverrideRecord struct {
	Date    string `csv:"date"`
	Local   string `csv:"name_local"`
	English string `csv:"name_en"`
}

// OverrideTable is an immutable, in-memory OverrideSource.
type OverrideTable struct {
	byYear map[int][]Override
	n      int
}

var _ OverrideSource = (*OverrideTable)(nil)

// NewOverrideTable builds a table from overrides. Entries of the same year
// keep their given order.
func NewOverrideTable(overrides []Override) *OverrideTable {
	t := &OverrideTable{byYear: make(map[int][]Override)}
	for _, o := range overrides {
		y := o.Date.Year()
		t.byYear[y] = append(t.byYear[y], o)
		t.n++
	}
	return t
}

// Overrides returns the overrides dated in year.
func (t *OverrideTable) Overrides(year int) ([]Override, error) {
	return t.byYear[year], nil
}

// Len returns the number of overrides in the table.
func (t *OverrideTable) Len() int { return t.n }

// Years returns the years that have at least one override, ascending.
func (t *OverrideTable) Years() []int {
	years := make([]int, 0, len(t.byYear))
	for y := range t.byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// LoadOverrides reads an override CSV (UTF-8) with the columns of
// OverrideRecord. Labels are normalized to NFC.
func LoadOverrides(r io.Reader) (*OverrideTable, error) {
	records, err := ReadOverrideRecords(r)
	if err != nil {
		return nil, err
	}
	overrides := make([]Override, 0, len(records))
	for i, rec := range records {
		o, err := rec.Override()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		overrides = append(overrides, o)
	}
	return NewOverrideTable(overrides), nil
}

// ReadOverrideRecords decodes every row of an override CSV without
// interpreting it.
func ReadOverrideRecords(r io.Reader) ([]OverrideRecord, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: reading header: %v", ErrInvalidRule, err)
	}
	dec.DisallowMissingColumns = true

	var records []OverrideRecord
	for {
		var rec OverrideRecord
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidRule, len(records)+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Override validates the record and converts it.
func (rec OverrideRecord) Override() (Override, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(rec.Date))
	if err != nil {
		return Override{}, fmt.Errorf("%w: date %q", ErrInvalidRule, rec.Date)
	}
	name := Name{
		Local:   norm.NFC.String(strings.TrimSpace(rec.Local)),
		English: norm.NFC.String(strings.TrimSpace(rec.English)),
	}
	if name.isZero() {
		return Override{}, fmt.Errorf("%w: %s: missing name", ErrInvalidRule, rec.Date)
	}
	return Override{Date: t, Name: name}, nil
}

// DecodeEUCKR wraps r, decoding EUC-KR (CP949) text to UTF-8. Korean public
// data portals commonly publish CSV files in this encoding.
func DecodeEUCKR(r io.Reader) io.Reader {
	return transform.NewReader(r, korean.EUCKR.NewDecoder())
}
