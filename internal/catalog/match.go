package catalog

import (
	"strings"
	"unicode"

	"github.com/manwah-pos/api/internal/model"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Name hits outrank description hits.
const (
	nameWeight        = 5
	descriptionWeight = 1
)

// keywords are the folded tokens of one menu entry, pre-tokenized at load.
type keywords struct {
	name        []string
	description []string
}

func keywordsOf(it model.MenuItem) keywords {
	return keywords{
		name:        strings.Fields(fold(it.Name)),
		description: strings.Fields(fold(it.Description)),
	}
}

// score rates how well the entry covers every query token. A token matches
// when it prefixes one of the entry's tokens. Zero means some token matched
// nothing.
func (k keywords) score(query []string) int {
	total := 0
	for _, q := range query {
		switch {
		case hasPrefix(k.name, q):
			total += nameWeight
		case hasPrefix(k.description, q):
			total += descriptionWeight
		default:
			return 0
		}
	}
	return total
}

func hasPrefix(tokens []string, q string) bool {
	for _, t := range tokens {
		if strings.HasPrefix(t, q) {
			return true
		}
	}
	return false
}

// fold lowercases s, strips tone and vowel marks so "Cá Hồi" and "ca hoi"
// compare equal, and collapses everything that is not a letter or digit into
// single spaces.
func fold(s string) string {
	// Transformers carry state, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	var sb strings.Builder
	sb.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case r == 'đ' || r == 'Đ':
			sb.WriteRune('d')
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(unicode.ToLower(r))
		default:
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
