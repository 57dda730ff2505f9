package lang

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

// Pattern is a compiled /regex/ literal. It matches at the start of a
// string, and it can be serialized with encoding/gob.
type Pattern struct {
	re  *regexp.Regexp
	src string
}

// NewPattern compiles src.
func NewPattern(src string) (*Pattern, error) {
	re, err := regexp.Compile(`^(?:` + src + `)`)
	if err != nil {
		return nil, err
	}

	return &Pattern{re: re, src: src}, nil
}

// Match reports whether the start of s matches.
func (p *Pattern) Match(s string) bool { return p.re.MatchString(s) }

// Source returns the pattern text.
func (p *Pattern) Source() string { return p.src }

func (p *Pattern) String() string { return p.src }

// Repr implements value.Reprer.
func (p *Pattern) Repr() string { return "/" + p.src + "/" }

// TypeName implements the value type-name hook.
func (p *Pattern) TypeName() string { return "regex" }

// GobEncode implements gob.GobEncoder.
func (p *Pattern) GobEncode() ([]byte, error) { return []byte(p.src), nil }

// GobDecode implements gob.GobDecoder.
func (p *Pattern) GobDecode(b []byte) error {
	q, err := NewPattern(string(b))
	if err != nil {
		return err
	}

	*p = *q

	return nil
}

var wildcards sync.Map //nolint:gochecknoglobals

// fnmatch reports whether name matches the shell wildcard pattern. Unlike
// path.Match, '*' also matches '/'.
func fnmatch(pattern, name string) bool {
	v, ok := wildcards.Load(pattern)
	if !ok {
		re, err := regexp.Compile(wildcardRegexp(pattern))
		if err != nil {
			re = regexp.MustCompile(`^` + regexp.QuoteMeta(pattern) + `$`)
		}

		v, _ = wildcards.LoadOrStore(pattern, re)
	}

	return v.(*regexp.Regexp).MatchString(name)
}

func wildcardRegexp(pattern string) string {
	var sb strings.Builder

	sb.WriteString(`^(?s:`)

	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '*':
			sb.WriteString(`.*`)
		case '?':
			sb.WriteString(`.`)
		case '[':
			end := strings.IndexByte(pattern[i+1:], ']')
			if end < 0 {
				sb.WriteString(`\[`)

				continue
			}

			class := pattern[i+1 : i+1+end]
			if end == 0 {
				// "[]...]" includes a literal ']'
				if next := strings.IndexByte(pattern[i+2:], ']'); next >= 0 {
					class = pattern[i+1 : i+2+next]
					end = next + 1
				}
			}

			sb.WriteByte('[')

			if strings.HasPrefix(class, "!") {
				sb.WriteByte('^')

				class = class[1:]
			}

			sb.WriteString(strings.ReplaceAll(class, `\`, `\\`))
			sb.WriteByte(']')

			i += end + 1
		default:
			if c >= utf8.RuneSelf {
				sb.WriteByte(c)
			} else {
				sb.WriteString(regexp.QuoteMeta(string(c)))
			}
		}
	}

	sb.WriteString(`)$`)

	return sb.String()
}
