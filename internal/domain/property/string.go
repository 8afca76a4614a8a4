package property

import (
	"fmt"
	"slices"
	"strings"
)

// SplitType selects how a string value is tokenized.
type SplitType uint8

// Split strategies.
const (
	SplitCharacter SplitType = iota + 1
	SplitWord
	SplitCustom
)

// DefaultSeparator is the separator used by word splitting when none is given.
const DefaultSeparator = " "

func (s SplitType) String() string {
	switch s {
	case SplitCharacter:
		return "character"
	case SplitWord:
		return "word"
	case SplitCustom:
		return "custom"
	default:
		return fmt.Sprintf("split(%d)", uint8(s))
	}
}

// Valid reports whether s is a known split strategy.
func (s SplitType) Valid() bool {
	return s >= SplitCharacter && s <= SplitCustom
}

// ParseSplitType parses "character", "word" or "custom".
func ParseSplitType(s string) (SplitType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "character", "char":
		return SplitCharacter, nil
	case "word", "":
		return SplitWord, nil
	case "custom", "delimited":
		return SplitCustom, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSplitType, s)
	}
}

// StringConfig is the tokenization configuration of a string descriptor.
type StringConfig struct {
	Split           SplitType
	Separator       string
	AsEnum          bool
	ExclusionSource string
}

// DefaultStringConfig is word splitting on a single space, not categorical,
// with no exclusions.
func DefaultStringConfig() StringConfig {
	return StringConfig{Split: SplitWord, Separator: DefaultSeparator}
}

// String is a string field, either tokenized or treated as one categorical value.
type String struct {
	header
	cfg        StringConfig
	exclusions []string // sorted, unique
}

// NewString returns a string descriptor. Exclusions are copied, sorted and
// de-duplicated; the descriptor never aliases the caller's slice.
func NewString(h Header, cfg StringConfig, exclusions []string) *String {
	ex := make([]string, 0, len(exclusions))
	for _, tok := range exclusions {
		if tok != "" {
			ex = append(ex, tok)
		}
	}
	slices.Sort(ex)
	ex = slices.Compact(ex)
	return &String{header: newHeader(h), cfg: cfg, exclusions: ex}
}

// Kind implements Property.
func (*String) Kind() Kind { return KindString }

// SplitType is the tokenization strategy.
func (s *String) SplitType() SplitType { return s.cfg.Split }

// Separator is the token separator.
func (s *String) Separator() string { return s.cfg.Separator }

// AsEnum reports whether the whole value is one categorical class.
func (s *String) AsEnum() bool { return s.cfg.AsEnum }

// ExclusionSource is the source the exclusion set was imported from, if any.
func (s *String) ExclusionSource() string { return s.cfg.ExclusionSource }

// Config returns a copy of the tokenization configuration.
func (s *String) Config() StringConfig { return s.cfg }

// Exclusions returns a sorted copy of the excluded tokens.
func (s *String) Exclusions() []string { return slices.Clone(s.exclusions) }

// Excludes reports whether token is filtered out of tokenization.
func (s *String) Excludes(token string) bool {
	_, ok := slices.BinarySearch(s.exclusions, token)
	return ok
}
