package repl

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/scopex/lang"
	"github.com/ardnew/scopex/value"
)

// keywords are the literal names of the expression language.
var keywords = []string{"True", "False", "None", "and", "or", "not", "in"} //nolint:gochecknoglobals

// isWordBoundary reports whether r delimits a completion word. Words are
// identifiers: letters, digits and underscores.
func isWordBoundary(r rune) bool {
	return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// wordBounds returns the word at cursor and its byte boundaries within
// input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the dotted index leading up to the word starting at
// wordStart. For "x + site.pages.ti" with the word "ti" it is "site.pages";
// for ".ti" it is "." (the root). It is empty for a word outside any
// member chain.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	pos := len(prefix)

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	chain := prefix[pos:]
	if strings.Trim(chain, ".") == "" {
		return "."
	}

	return strings.TrimRight(chain, ".")
}

// candidates returns the completions for the word starting at wordStart.
func (s *session) candidates(input string, wordStart int) []string {
	if strings.HasPrefix(strings.TrimSpace(input), commandPrefix) {
		return s.commandCandidates(input, wordStart)
	}

	return s.exprCandidates(input, wordStart)
}

// exprCandidates completes member names after a dotted index, or visible
// keys, keywords and modifiers elsewhere.
func (s *session) exprCandidates(input string, wordStart int) []string {
	if parent := parentPath(input, wordStart); parent != "" {
		v, err := s.c.Get(parent)
		if err != nil {
			return nil
		}

		return keyNames(v)
	}

	var names []string

	for _, obj := range s.c.CurrentFrame().Objs() {
		names = append(names, keyNames(obj)...)
	}

	names = append(names, keywords...)
	names = append(names, lang.Modifiers()...)

	slices.Sort(names)

	return slices.Compact(names)
}

// commandCandidates completes the command name, then paths and expressions
// in the arguments of commands taking them.
func (s *session) commandCandidates(input string, wordStart int) []string {
	body := strings.TrimLeft(input, " ")
	nameStart := len(input) - len(body) + len(commandPrefix)

	name, _, hasArg := strings.Cut(input[nameStart:], " ")
	if !hasArg || wordStart <= nameStart+len(name) {
		names := make([]string, len(commands))
		for i, c := range commands {
			names[i] = c.name
		}

		return names
	}

	switch name {
	case "frame", "scope", "keys", "set":
		return s.exprCandidates(input, wordStart)
	}

	return nil
}

func keyNames(obj any) []string {
	keys := value.Keys(obj)
	names := make([]string, 0, len(keys))

	for _, k := range keys {
		names = append(names, value.Str(k))
	}

	return names
}

// computeMatches ranks the candidates for the word at the cursor. An empty
// word matches every candidate after a dot and nothing elsewhere.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())
	candidates := m.session.candidates(input, wordStart)

	if len(candidates) == 0 {
		return nil, wordStart, wordEnd
	}

	if word == "" {
		if !strings.HasSuffix(input[:wordStart], ".") {
			return nil, wordStart, wordEnd
		}

		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Modifiers are displayed with a ":" suffix.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	if isModifier(match.Str) {
		b.WriteString(baseStyle.Render(":"))
	}

	return b.String()
}

func isModifier(name string) bool {
	_, ok := slices.BinarySearch(lang.Modifiers(), name)

	return ok
}
