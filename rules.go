package krholiday

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Language selects which of a rule's names is used as the holiday label.
type Language int

const (
	// English labels, e.g. "Children's Day".
	English Language = iota
	// Local labels in the jurisdiction's own language, e.g. "어린이날".
	Local
)

func (l Language) String() string {
	if l == Local {
		return "local"
	}
	return "en"
}

// ParseLanguage parses "en"/"english" or "local"/"ko"/"kr"/"korean".
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "en", "eng", "english":
		return English, nil
	case "local", "ko", "kr", "kor", "korean":
		return Local, nil
	}
	return English, fmt.Errorf("krholiday: unknown language %q", s)
}

// Name is a holiday label in the jurisdiction's language and in English.
type Name struct {
	Local   string `yaml:"local"`
	English string `yaml:"en"`
}

// In returns the label for lang, falling back to the other language when
// that one is empty.
func (n Name) In(lang Language) string {
	if lang == Local && n.Local != "" {
		return n.Local
	}
	if n.English != "" {
		return n.English
	}
	return n.Local
}

func (n Name) isZero() bool { return n.Local == "" && n.English == "" }

// Window is an inclusive range of years. A zero bound is unbounded.
type Window struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// Contains reports whether year lies within the window.
func (w Window) Contains(year int) bool {
	if w.From != 0 && year < w.From {
		return false
	}
	if w.To != 0 && year > w.To {
		return false
	}
	return true
}

func (w Window) String() string {
	from, to := "", ""
	if w.From != 0 {
		from = strconv.Itoa(w.From)
	}
	if w.To != 0 {
		to = strconv.Itoa(w.To)
	}
	return "[" + from + ".." + to + "]"
}

// FixedRule places a holiday on the same month and day every year of its
// window.
type FixedRule struct {
	Key    string     `yaml:"key"`
	Month  time.Month `yaml:"month"`
	Day    int        `yaml:"day"`
	Name   Name       `yaml:"name"`
	Window Window     `yaml:"window"`
}

// ClusterDay is an extra day placed relative to a lunar anchor, with its own
// validity window.
type ClusterDay struct {
	Offset int    `yaml:"offset"`
	Name   Name   `yaml:"name"`
	Window Window `yaml:"window"`
}

// LunarRule places a holiday on a lunar-calendar date, resolved each year
// through a lunar converter.
type LunarRule struct {
	Key     string       `yaml:"key"`
	Month   int          `yaml:"month"`
	Day     int          `yaml:"day"`
	Leap    bool         `yaml:"leap"`
	Name    Name         `yaml:"name"`
	Window  Window       `yaml:"window"`
	Cluster []ClusterDay `yaml:"cluster"`
}

// SubstituteRule derives a substitute holiday from an anchor placed earlier
// in the same year by the fixed or lunar rule with key Anchor.
//
// The occasion covers [anchor+Offset, anchor+Offset+Span]. If any of its days
// falls on a Trigger weekday, the substitute is the first day after the
// occasion that is not a Skip weekday. Both sets default to Saturday and
// Sunday.
type SubstituteRule struct {
	Anchor  string   `yaml:"anchor"`
	Offset  int      `yaml:"offset"`
	Span    int      `yaml:"span"`
	Trigger Weekdays `yaml:"trigger"`
	Skip    Weekdays `yaml:"skip"`
	Window  Window   `yaml:"window"`
	// Suffix overrides RuleTable.Suffix for this rule.
	Suffix Name `yaml:"suffix"`
}

// Substitute returns the substitute date for an anchor, if one is due.
func (s SubstituteRule) Substitute(anchor time.Time) (time.Time, bool) {
	d, ok := s.substitute(civilDate(anchor))
	if !ok {
		return time.Time{}, false
	}
	return d.toTime(), true
}

func (s SubstituteRule) substitute(anchor date) (date, bool) {
	trigger := s.Trigger.orWeekend()
	first := anchor.addDays(s.Offset)
	hit := false
	for i := 0; i <= s.Span; i++ {
		if trigger.Contains(first.addDays(i).weekday()) {
			hit = true
			break
		}
	}
	if !hit {
		return date{}, false
	}
	skip := s.Skip.orWeekend()
	sub := first.addDays(s.Span + 1)
	for skip.Contains(sub.weekday()) {
		sub = sub.addDays(1)
	}
	return sub, true
}

// Override is a literal holiday for one date, typically an election or a
// day declared by decree.
type Override struct {
	Date time.Time
	Name Name
}

// Weekdays is a set of weekdays. In YAML it is a list of names ("sat",
// "Sunday") or numbers (0 for Sunday).
type Weekdays []time.Weekday

// Weekend is Saturday and Sunday.
var Weekend = Weekdays{time.Saturday, time.Sunday}

// Contains reports whether wd is in the set.
func (w Weekdays) Contains(wd time.Weekday) bool {
	for _, x := range w {
		if x == wd {
			return true
		}
	}
	return false
}

func (w Weekdays) orWeekend() Weekdays {
	if len(w) == 0 {
		return Weekend
	}
	return w
}

func (w *Weekdays) UnmarshalYAML(node *yaml.Node) error {
	var names []string
	if err := node.Decode(&names); err != nil {
		return err
	}
	out := make(Weekdays, 0, len(names))
	for _, name := range names {
		wd, err := parseWeekday(name)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		out = append(out, wd)
	}
	*w = out
	return nil
}

func parseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 6 {
		return time.Weekday(n), nil
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		full := strings.ToLower(wd.String())
		if s == full || s == full[:3] {
			return wd, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

// RuleTable is the declarative holiday definition of a jurisdiction. Rules
// are evaluated in the order fixed, lunar, substitute, then overrides;
// within a kind, in table order. Later writes to the same date win.
type RuleTable struct {
	Fixed       []FixedRule      `yaml:"fixed"`
	Lunar       []LunarRule      `yaml:"lunar"`
	Substitutes []SubstituteRule `yaml:"substitutes"`
	// Suffix is appended to the anchor's label to name a substitute holiday.
	Suffix Name `yaml:"substitute_suffix"`
}

// LoadRules decodes a YAML rule table and validates it.
func LoadRules(r io.Reader) (*RuleTable, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var t RuleTable
	if err := dec.Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty rule table", ErrInvalidRule)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks every rule and returns all problems found.
func (t *RuleTable) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidRule}, args...)...))
	}

	keys := make(map[string]bool)
	for i, r := range t.Fixed {
		if r.Key == "" {
			bad("fixed rule %d: missing key", i)
		}
		keys[r.Key] = true
		if r.Month < time.January || r.Month > time.December {
			bad("fixed rule %q: month %d", r.Key, r.Month)
		} else if r.Day < 1 || r.Day > daysIn(r.Month, 2000) {
			bad("fixed rule %q: day %d of %s", r.Key, r.Day, r.Month)
		}
		if r.Name.isZero() {
			bad("fixed rule %q: missing name", r.Key)
		}
		if !validWindow(r.Window) {
			bad("fixed rule %q: window %s", r.Key, r.Window)
		}
	}
	for i, r := range t.Lunar {
		if r.Key == "" {
			bad("lunar rule %d: missing key", i)
		}
		keys[r.Key] = true
		if r.Month < 1 || r.Month > 12 || r.Day < 1 || r.Day > 30 {
			bad("lunar rule %q: lunar date %d/%d", r.Key, r.Month, r.Day)
		}
		if r.Name.isZero() {
			bad("lunar rule %q: missing name", r.Key)
		}
		if !validWindow(r.Window) {
			bad("lunar rule %q: window %s", r.Key, r.Window)
		}
		for _, c := range r.Cluster {
			if c.Offset == 0 {
				bad("lunar rule %q: cluster day at offset 0", r.Key)
			}
			if c.Name.isZero() {
				bad("lunar rule %q: cluster day %+d: missing name", r.Key, c.Offset)
			}
			if !validWindow(c.Window) {
				bad("lunar rule %q: cluster day %+d: window %s", r.Key, c.Offset, c.Window)
			}
		}
	}
	for i, s := range t.Substitutes {
		if !keys[s.Anchor] {
			bad("substitute rule %d: unknown anchor %q", i, s.Anchor)
		}
		if s.Span < 0 {
			bad("substitute rule %q: negative span", s.Anchor)
		}
		if len(s.Skip) == 7 {
			bad("substitute rule %q: every weekday skipped", s.Anchor)
		}
		if !validWindow(s.Window) {
			bad("substitute rule %q: window %s", s.Anchor, s.Window)
		}
		if s.Suffix.isZero() && t.Suffix.isZero() {
			bad("substitute rule %q: no suffix", s.Anchor)
		}
	}
	return errors.Join(errs...)
}

func validWindow(w Window) bool {
	return w.From == 0 || w.To == 0 || w.From <= w.To
}

// daysIn returns the number of days of month in year.
func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
