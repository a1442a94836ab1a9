package krholiday

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"
	"time"

	"github.com/rabitt1ove/kr-holidays/lunar"
)

var (
	//go:embed data/kr.yaml
	krRules []byte

	//go:embed data/kr_overrides.csv
	krOverrides []byte
)

// KoreaRules returns the rule table of South Korea. The table is shared and
// must not be modified.
var KoreaRules = sync.OnceValues(func() (*RuleTable, error) {
	t, err := LoadRules(bytes.NewReader(krRules))
	if err != nil {
		return nil, fmt.Errorf("data/kr.yaml: %w", err)
	}
	return t, nil
})

// KoreaOverrides returns the elections, referendums, state funerals and
// temporary holidays declared in South Korea since 1950.
var KoreaOverrides = sync.OnceValues(func() (*OverrideTable, error) {
	t, err := LoadOverrides(bytes.NewReader(krOverrides))
	if err != nil {
		return nil, fmt.Errorf("data/kr_overrides.csv: %w", err)
	}
	return t, nil
})

func init() {
	if err := Register(Jurisdiction{
		Code:        "KR",
		Name:        "South Korea",
		Aliases:     []string{"KOR", "Korea"},
		Location:    kstZone,
		NewProvider: newKoreaProvider,
	}); err != nil {
		panic(err)
	}
}

func newKoreaProvider(cfg ProviderConfig) (RuleProvider, error) {
	rules, err := KoreaRules()
	if err != nil {
		return nil, err
	}
	conv := cfg.Converter
	if conv == nil {
		conv = lunar.Korean{}
	}
	src := cfg.Overrides
	if src == nil {
		t, err := KoreaOverrides()
		if err != nil {
			return nil, err
		}
		src = t
	}
	return NewEngine(EngineConfig{
		Rules:     rules,
		Converter: conv,
		Overrides: src,
		Language:  cfg.Language,
		Observed:  cfg.Observed,
		Logger:    cfg.Logger,
	})
}

// defaultSet is the KR set used by the package-level functions: observed
// substitutes, English labels, expanding on demand.
var defaultSet = sync.OnceValue(func() *HolidaySet {
	s, err := New("KR")
	if err != nil {
		panic(err)
	}
	return s
})

// Default returns the HolidaySet used by the package-level functions.
func Default() *HolidaySet { return defaultSet() }

// --- Package-level convenience functions ---

// IsHoliday reports whether the given date is a holiday in South Korea.
func IsHoliday(t time.Time) bool { return defaultSet().IsHoliday(t) }

// HolidayName returns the holiday name for the given date, or "".
func HolidayName(t time.Time) string { return defaultSet().HolidayName(t) }

// HolidaysInYear returns all holidays in the given year, sorted by date.
func HolidaysInYear(year int) ([]Holiday, error) { return defaultSet().HolidaysInYear(year) }

// HolidaysInMonth returns all holidays in the given year and month, sorted by date.
func HolidaysInMonth(year int, month time.Month) ([]Holiday, error) {
	return defaultSet().HolidaysInMonth(year, month)
}

// HolidaysBetween returns all holidays in the range [from, to] inclusive.
func HolidaysBetween(from, to time.Time) ([]Holiday, error) {
	return defaultSet().HolidaysBetween(from, to)
}

// AddCustomHoliday registers a custom holiday on the default set.
func AddCustomHoliday(t time.Time, name string) { defaultSet().AddCustomHoliday(t, name) }

// RemoveCustomHoliday removes a custom holiday from the default set.
func RemoveCustomHoliday(t time.Time) { defaultSet().RemoveCustomHoliday(t) }
