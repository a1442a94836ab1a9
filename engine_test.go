package krholiday

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabitt1ove/kr-holidays/lunar"
)

// converterFunc adapts a function to lunar.Converter.
type converterFunc func(year, month, day int, leap bool) (time.Time, error)

func (f converterFunc) Solar(year, month, day int, leap bool) (time.Time, error) {
	return f(year, month, day, leap)
}

// overrideFunc adapts a function to OverrideSource.
type overrideFunc func(year int) ([]Override, error)

func (f overrideFunc) Overrides(year int) ([]Override, error) { return f(year) }

// recorder is a Writer that keeps every write in order.
type recorder struct {
	writes []entry
}

func (r *recorder) Write(t time.Time, name string) {
	r.writes = append(r.writes, entry{t.Format("2006-01-02"), name})
}

func (r *recorder) final() map[string]string {
	m := make(map[string]string)
	for _, w := range r.writes {
		m[w.date] = w.name
	}
	return m
}

func en(s string) Name { return Name{English: s} }

func populate(t *testing.T, cfg EngineConfig, year int) map[string]string {
	t.Helper()
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	var r recorder
	require.NoError(t, e.Populate(year, &r))
	return r.final()
}

func TestEngine_FixedRules(t *testing.T) {
	t.Parallel()

	rules := &RuleTable{Fixed: []FixedRule{
		{Key: "a", Month: time.March, Day: 1, Name: en("A")},
		{Key: "b", Month: time.April, Day: 5, Name: en("B"), Window: Window{To: 2006}},
		{Key: "c", Month: time.May, Day: 5, Name: en("C"), Window: Window{From: 1975}},
		{Key: "leap", Month: time.February, Day: 29, Name: en("Leap")},
	}}

	got := populate(t, EngineConfig{Rules: rules}, 2006)
	assert.Equal(t, map[string]string{
		"2006-03-01": "A",
		"2006-04-05": "B",
		"2006-05-05": "C",
	}, got)

	got = populate(t, EngineConfig{Rules: rules}, 1974)
	assert.NotContains(t, got, "1974-05-05")

	got = populate(t, EngineConfig{Rules: rules}, 2024)
	assert.Equal(t, "Leap", got["2024-02-29"])
	assert.NotContains(t, got, "2024-04-05")
}

func TestEngine_LunarRules(t *testing.T) {
	t.Parallel()

	conv := converterFunc(func(year, month, day int, leap bool) (time.Time, error) {
		switch {
		case month == 1 && day == 1:
			return d(year, time.February, 10), nil
		case month == 8 && day == 15:
			return d(year, time.September, 17), nil
		}
		return time.Time{}, lunar.ErrUnsupportedDate
	})
	rules := &RuleTable{Lunar: []LunarRule{
		{Key: "new-year", Month: 1, Day: 1, Name: en("NY"), Cluster: []ClusterDay{
			{Offset: -1, Name: en("NY eve")},
			{Offset: 1, Name: en("NY after"), Window: Window{From: 2000}},
		}},
		{Key: "missing", Month: 12, Day: 30, Name: en("Missing")},
		{Key: "harvest", Month: 8, Day: 15, Name: en("Harvest")},
	}}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	got := populate(t, EngineConfig{Rules: rules, Converter: conv, Logger: logger}, 2024)
	assert.Equal(t, map[string]string{
		"2024-02-09": "NY eve",
		"2024-02-10": "NY",
		"2024-02-11": "NY after",
		"2024-09-17": "Harvest",
	}, got)
	assert.Contains(t, buf.String(), "skipping lunar rule")
	assert.Contains(t, buf.String(), "rule=missing")

	got = populate(t, EngineConfig{Rules: rules, Converter: conv}, 1999)
	assert.NotContains(t, got, "1999-02-11", "cluster day outside its window")
	assert.Contains(t, got, "1999-02-09")
}

func TestEngine_LunarRequiresConverter(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(EngineConfig{Rules: &RuleTable{Lunar: []LunarRule{
		{Key: "x", Month: 1, Day: 1, Name: en("X")},
	}}})
	assert.Error(t, err)

	_, err = NewEngine(EngineConfig{})
	assert.Error(t, err)
}

func TestEngine_InvalidTable(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(EngineConfig{Rules: &RuleTable{Fixed: []FixedRule{
		{Key: "x", Month: 13, Day: 1, Name: en("X")},
	}}})
	assert.ErrorIs(t, err, ErrInvalidRule)
}

// Single-day law: Saturday moves two days, Sunday one, weekdays none.
func TestEngine_SingleDaySubstitute(t *testing.T) {
	t.Parallel()

	rules := &RuleTable{
		Fixed:       []FixedRule{{Key: "day", Month: time.May, Day: 5, Name: en("Day")}},
		Substitutes: []SubstituteRule{{Anchor: "day"}},
		Suffix:      en(" Sub"),
	}

	for year := 2000; year <= 2030; year++ {
		got := populate(t, EngineConfig{Rules: rules, Observed: true}, year)
		anchor := d(year, time.May, 5)
		var want string
		switch anchor.Weekday() {
		case time.Saturday:
			want = anchor.AddDate(0, 0, 2).Format("2006-01-02")
		case time.Sunday:
			want = anchor.AddDate(0, 0, 1).Format("2006-01-02")
		}
		if want == "" {
			assert.Len(t, got, 1, "%d (%s)", year, anchor.Weekday())
			continue
		}
		assert.Equal(t, "Day Sub", got[want], "%d (%s)", year, anchor.Weekday())
		assert.Equal(t, time.Monday, civilDate(mustParse(t, want)).weekday())
	}
}

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return v
}

// Cluster law: a Sunday anywhere in [anchor-1, anchor+1] gives a substitute on
// anchor+2 when the anchor is a Saturday, Sunday or Monday.
func TestEngine_ClusterSubstitute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		anchor time.Time
		want   string
	}{
		{d(2024, time.January, 6), "2024-01-08"},
		{d(2024, time.January, 7), "2024-01-09"},
		{d(2024, time.January, 8), "2024-01-10"},
		{d(2024, time.January, 9), ""},
		{d(2024, time.January, 10), ""},
		{d(2024, time.January, 11), ""},
		{d(2024, time.January, 12), ""},
	}
	for _, tt := range tests {
		t.Run(tt.anchor.Weekday().String(), func(t *testing.T) {
			anchor := tt.anchor
			conv := converterFunc(func(year, month, day int, leap bool) (time.Time, error) {
				return anchor, nil
			})
			rules := &RuleTable{
				Lunar: []LunarRule{{Key: "seollal", Month: 1, Day: 1, Name: en("S"), Cluster: []ClusterDay{
					{Offset: -1, Name: en("S-")}, {Offset: 1, Name: en("S+")},
				}}},
				Substitutes: []SubstituteRule{{Anchor: "seollal", Offset: -1, Span: 2, Trigger: Weekdays{time.Sunday}}},
				Suffix:      en(" Sub"),
			}
			got := populate(t, EngineConfig{Rules: rules, Converter: conv, Observed: true}, 2024)
			if tt.want == "" {
				assert.Len(t, got, 3)
				return
			}
			assert.Len(t, got, 4)
			assert.Equal(t, "S Sub", got[tt.want])
		})
	}
}

func TestEngine_SubstituteWindowAndAnchor(t *testing.T) {
	t.Parallel()

	rules := &RuleTable{
		Fixed: []FixedRule{
			// May 5, 2019 is a Sunday.
			{Key: "children", Month: time.May, Day: 5, Name: en("Children")},
			{Key: "gone", Month: time.June, Day: 1, Name: en("Gone"), Window: Window{To: 2000}},
		},
		Substitutes: []SubstituteRule{
			{Anchor: "children", Window: Window{From: 2020}},
			{Anchor: "gone"},
		},
		Suffix: en(" Sub"),
	}
	got := populate(t, EngineConfig{Rules: rules, Observed: true}, 2019)
	assert.Equal(t, map[string]string{"2019-05-05": "Children"}, got)
}

func TestEngine_ObservedOff(t *testing.T) {
	t.Parallel()

	rules := &RuleTable{
		Fixed:       []FixedRule{{Key: "day", Month: time.May, Day: 5, Name: en("Day")}},
		Substitutes: []SubstituteRule{{Anchor: "day"}},
		Suffix:      en(" Sub"),
	}
	// May 5, 2024 is a Sunday.
	got := populate(t, EngineConfig{Rules: rules}, 2024)
	assert.Equal(t, map[string]string{"2024-05-05": "Day"}, got)
}

func TestEngine_RuleSuffix(t *testing.T) {
	t.Parallel()

	rules := &RuleTable{
		Fixed: []FixedRule{{Key: "day", Month: time.May, Day: 5, Name: Name{Local: "날", English: "Day"}}},
		Substitutes: []SubstituteRule{{
			Anchor: "day",
			Suffix: Name{Local: " 대체", English: " (observed)"},
		}},
	}
	got := populate(t, EngineConfig{Rules: rules, Observed: true}, 2024)
	assert.Equal(t, "Day (observed)", got["2024-05-06"])

	got = populate(t, EngineConfig{Rules: rules, Observed: true, Language: Local}, 2024)
	assert.Equal(t, "날 대체", got["2024-05-06"])
}

func TestEngine_OverridesLast(t *testing.T) {
	t.Parallel()

	rules := &RuleTable{Fixed: []FixedRule{{Key: "day", Month: time.May, Day: 5, Name: en("Day")}}}
	src := NewOverrideTable([]Override{
		{Date: d(2024, time.May, 5), Name: en("Replaced")},
		{Date: d(2024, time.May, 7), Name: en("Extra")},
		{Date: d(2025, time.May, 8), Name: en("Other year")},
	})

	e, err := NewEngine(EngineConfig{Rules: rules, Overrides: src})
	require.NoError(t, err)
	var r recorder
	require.NoError(t, e.Populate(2024, &r))

	assert.Equal(t, []entry{
		{"2024-05-05", "Day"},
		{"2024-05-05", "Replaced"},
		{"2024-05-07", "Extra"},
	}, r.writes)
	assert.Equal(t, "Replaced", r.final()["2024-05-05"])
}

func TestEngine_OverrideError(t *testing.T) {
	t.Parallel()

	boom := errors.New("source down")
	rules := &RuleTable{Fixed: []FixedRule{{Key: "day", Month: time.May, Day: 5, Name: en("Day")}}}
	e, err := NewEngine(EngineConfig{
		Rules: rules,
		Overrides: overrideFunc(func(year int) ([]Override, error) {
			return nil, fmt.Errorf("year %d: %w", year, boom)
		}),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, e.Populate(2024, &recorder{}), boom)

	s, err := NewSet(e)
	require.NoError(t, err)
	ok, err := s.Contains("2024-05-05")
	assert.ErrorIs(t, err, boom)
	assert.False(t, ok)
	assert.Empty(t, s.Years())
	assert.Zero(t, s.Len())
}

func TestEngine_KoreaLunarAnchors(t *testing.T) {
	t.Parallel()

	rules, err := KoreaRules()
	require.NoError(t, err)
	e, err := NewEngine(EngineConfig{Rules: rules, Converter: lunar.Korean{}})
	require.NoError(t, err)

	for year := 1990; year <= 2040; year++ {
		var r recorder
		require.NoError(t, e.Populate(year, &r))
		got := r.final()

		for _, lr := range []struct {
			month, day int
			name       string
		}{{1, 1, "Seollal"}, {4, 8, "Buddha's Birthday"}, {8, 15, "Chuseok"}} {
			want, err := lunar.Korean{}.Solar(year, lr.month, lr.day, false)
			require.NoError(t, err)
			assert.Equal(t, lr.name, got[want.Format("2006-01-02")], "%d", year)
		}
	}
}
