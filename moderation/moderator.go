// Package moderation masks censored words in message bodies before they are
// persisted. Matching runs on a normalized view of the text (lowercased,
// leet-speak folded, punctuation stripped) so trivial obfuscation does not
// bypass the list.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

// NewModerator builds the Aho-Corasick automaton from the censored word list.
func NewModerator(censoredWords []string, replacement rune) (*Moderator, error) {
	patterns := make([][]rune, len(censoredWords))
	for i, word := range censoredWords {
		patterns[i], _ = normalize(word)
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, replacement: replacement}, nil
}

// Censor replaces every character of a matched span with the replacement
// rune, preserving the original length and spacing.
func (m *Moderator) Censor(original string) string {
	normalized, origIdx := normalize(original)
	if len(normalized) == 0 {
		return original
	}

	spans := m.matcher.MultiPatternSearch(normalized, false)
	if len(spans) == 0 {
		return original
	}

	origRunes := []rune(original)
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			origRunes[i] = m.replacement
		}
	}
	return string(origRunes)
}

// normalize lowercases, folds leet-speak, and drops punctuation and spacing.
// The second return value maps each normalized rune back to its position in
// the original string.
func normalize(input string) ([]rune, []int) {
	origRunes := []rune(input)
	norm := make([]rune, 0, len(origRunes))
	origIdx := make([]int, 0, len(origRunes))

	for i, r := range origRunes {
		clean := foldLeet(r)
		if unicode.IsPunct(clean) || unicode.IsSpace(clean) || unicode.IsSymbol(clean) {
			continue
		}
		norm = append(norm, unicode.ToLower(clean))
		origIdx = append(origIdx, i)
	}
	return norm, origIdx
}

// foldLeet maps common leet-speak characters back to their alphabet counterparts.
func foldLeet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
