package krholiday

import (
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rabitt1ove/kr-holidays/lunar"
)

// ProviderConfig carries the options of New to a jurisdiction's provider
// constructor. Zero-valued Converter and Overrides mean the jurisdiction's
// defaults.
type ProviderConfig struct {
	Subdivision string
	Observed    bool
	Language    Language
	Logger      *slog.Logger
	Converter   lunar.Converter
	Overrides   OverrideSource
}

// Jurisdiction describes a country (or other calendar authority) that New
// can build a HolidaySet for. Alternative names are registry aliases, not
// separate types.
type Jurisdiction struct {
	Code         string   // ISO 3166-1 alpha-2, e.g. "KR".
	Name         string   // English name.
	Aliases      []string // Extra lookup keys, e.g. "Korea".
	Subdivisions []string
	Location     *time.Location
	NewProvider  func(ProviderConfig) (RuleProvider, error)
}

func (j Jurisdiction) hasSubdivision(code string) bool {
	for _, s := range j.Subdivisions {
		if strings.EqualFold(s, code) {
			return true
		}
	}
	return false
}

var registry = struct {
	sync.RWMutex
	byKey map[string]*Jurisdiction // upper-cased code or alias
	codes map[string]*Jurisdiction
}{
	byKey: make(map[string]*Jurisdiction),
	codes: make(map[string]*Jurisdiction),
}

// Register adds j to the registry under its code and aliases, replacing any
// previous registration of the same keys.
func Register(j Jurisdiction) error {
	if j.Code == "" {
		return errors.New("krholiday: jurisdiction without a code")
	}
	if j.NewProvider == nil {
		return errors.New("krholiday: jurisdiction " + j.Code + " without a provider")
	}
	jj := j
	jj.Code = strings.ToUpper(j.Code)

	registry.Lock()
	defer registry.Unlock()
	registry.codes[jj.Code] = &jj
	registry.byKey[jj.Code] = &jj
	for _, a := range jj.Aliases {
		registry.byKey[strings.ToUpper(a)] = &jj
	}
	return nil
}

// Lookup finds a jurisdiction by code or alias, ignoring case.
func Lookup(code string) (Jurisdiction, bool) {
	registry.RLock()
	defer registry.RUnlock()
	j, ok := registry.byKey[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Jurisdiction{}, false
	}
	return *j, true
}

// Supported maps every registered code to its subdivisions.
func Supported() map[string][]string {
	registry.RLock()
	defer registry.RUnlock()
	out := make(map[string][]string, len(registry.codes))
	for code, j := range registry.codes {
		out[code] = append([]string{}, j.Subdivisions...)
	}
	return out
}

// Jurisdictions returns every registered jurisdiction, ordered by code.
func Jurisdictions() []Jurisdiction {
	registry.RLock()
	defer registry.RUnlock()
	out := make([]Jurisdiction, 0, len(registry.codes))
	for _, j := range registry.codes {
		out = append(out, *j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Code < out[k].Code })
	return out
}
