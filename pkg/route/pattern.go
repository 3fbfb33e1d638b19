package route

import (
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/vango-dev/waymark/internal/errors"
)

// SplatParam is the parameter name under which "*" and "**" segments
// capture the matched remainder.
const SplatParam = "splat"

// tokenMatcher picks out the non-literal pieces of a pattern.
var tokenMatcher = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)|\*\*|\*|\(|\)|\\\(|\\\)`)

// compiledPattern is a pattern ready for matching. Compilation results are
// cached process-wide; patterns are static configuration so the cache only
// grows while routes are registered.
type compiledPattern struct {
	re         *regexp.Regexp
	paramNames []string
	tokens     []string
}

var patternCache = struct {
	sync.RWMutex
	m map[string]*compiledPattern
}{m: make(map[string]*compiledPattern)}

// compilePattern compiles a pattern into its matching regexp, with results
// memoized by pattern text.
func compilePattern(pattern string) (*compiledPattern, error) {
	patternCache.RLock()
	cp, ok := patternCache.m[pattern]
	patternCache.RUnlock()
	if ok {
		return cp, nil
	}

	cp, err := buildPattern(pattern)
	if err != nil {
		return nil, err
	}

	patternCache.Lock()
	patternCache.m[pattern] = cp
	patternCache.Unlock()
	return cp, nil
}

// buildPattern translates a pattern into a regexp source.
//
//	:name   one pathname segment, captured
//	*       the remainder, captured non-greedily as "splat"
//	**      the remainder, captured greedily as "splat"
//	( )     optional group
func buildPattern(pattern string) (*compiledPattern, error) {
	var (
		source     strings.Builder
		paramNames []string
		tokens     []string
		depth      int
		lastIndex  int
	)

	for _, idx := range tokenMatcher.FindAllStringSubmatchIndex(pattern, -1) {
		start, end := idx[0], idx[1]
		if start != lastIndex {
			lit := pattern[lastIndex:start]
			tokens = append(tokens, lit)
			source.WriteString(regexp.QuoteMeta(lit))
		}
		tok := pattern[start:end]

		switch {
		case idx[2] >= 0: // :name
			source.WriteString(`([^/?#]+)`)
			paramNames = append(paramNames, pattern[idx[2]:idx[3]])
		case tok == "**":
			source.WriteString(`(.*)`)
			paramNames = append(paramNames, SplatParam)
		case tok == "*":
			source.WriteString(`(.*?)`)
			paramNames = append(paramNames, SplatParam)
		case tok == "(":
			source.WriteString(`(?:`)
			depth++
		case tok == ")":
			if depth == 0 {
				return nil, errors.New("W001").WithRoute(pattern).
					WithDetail(`Unbalanced ")" in route pattern.`)
			}
			source.WriteString(`)?`)
			depth--
		case tok == `\(`:
			source.WriteString(regexp.QuoteMeta("("))
		case tok == `\)`:
			source.WriteString(regexp.QuoteMeta(")"))
		}

		tokens = append(tokens, tok)
		lastIndex = end
	}
	if lastIndex != len(pattern) {
		lit := pattern[lastIndex:]
		tokens = append(tokens, lit)
		source.WriteString(regexp.QuoteMeta(lit))
	}
	if depth != 0 {
		return nil, errors.New("W001").WithRoute(pattern).
			WithDetail(`Unbalanced "(" in route pattern.`)
	}

	matchSource := source.String()
	// Allow stray trailing slashes unless the pattern spells one out.
	if !strings.HasSuffix(pattern, "/") {
		matchSource += "/*"
	}
	// A pattern ending in a splat must consume the whole remainder.
	if len(tokens) > 0 && tokens[len(tokens)-1] == "*" {
		matchSource += "$"
	}

	re, err := regexp.Compile("(?i)^" + matchSource)
	if err != nil {
		return nil, errors.New("W001").WithRoute(pattern).Wrap(err)
	}

	return &compiledPattern{re: re, paramNames: paramNames, tokens: tokens}, nil
}

// PatternMatch is the outcome of matching a pattern against a prefix of a
// pathname.
type PatternMatch struct {
	// RemainingPathname is what the pattern left unconsumed; empty means
	// the pattern matched the whole pathname.
	RemainingPathname string

	// ParamNames and ParamValues are the ordered captures. Optional
	// groups that did not participate contribute nothing.
	ParamNames  []string
	ParamValues []string
}

// MatchPattern matches a pattern against a pathname. The pattern matches a
// prefix of the pathname; a partial match must end on a "/" boundary.
// Matching is case-insensitive.
func MatchPattern(pattern, pathname string) (*PatternMatch, bool, error) {
	if !strings.HasPrefix(pattern, "/") {
		pattern = "/" + pattern
	}
	if !strings.HasPrefix(pathname, "/") {
		pathname = "/" + pathname
	}

	cp, err := compilePattern(pattern)
	if err != nil {
		return nil, false, err
	}

	idx := cp.re.FindStringSubmatchIndex(pathname)
	if idx == nil {
		return nil, false, nil
	}

	matched := pathname[:idx[1]]
	remaining := pathname[idx[1]:]
	if remaining != "" && !strings.HasSuffix(matched, "/") {
		// The pattern stopped mid-segment; "/use" must not match
		// "/users".
		return nil, false, nil
	}

	pm := &PatternMatch{RemainingPathname: remaining}
	for i, name := range cp.paramNames {
		lo := idx[2+2*i]
		if lo < 0 {
			continue
		}
		raw := pathname[lo:idx[3+2*i]]
		if dec, err := url.PathUnescape(raw); err == nil {
			raw = dec
		}
		pm.ParamNames = append(pm.ParamNames, name)
		pm.ParamValues = append(pm.ParamValues, raw)
	}
	return pm, true, nil
}

// ParamNames returns the ordered capture names a pattern declares.
func ParamNames(pattern string) []string {
	cp, err := compilePattern(pattern)
	if err != nil {
		return nil
	}
	return cp.paramNames
}

// FormatPattern fills a pattern's captures from params and returns the
// concrete pathname. Optional groups are dropped when any capture inside
// them is missing; a missing capture outside a group is an error.
func FormatPattern(pattern string, params Params) (string, error) {
	cp, err := compilePattern(pattern)
	if err != nil {
		return "", err
	}
	out, _, err := formatTokens(cp.tokens, 0, params, pattern)
	if err != nil {
		return "", err
	}
	return out, nil
}

// formatTokens renders tokens from position i until the matching ")" or the
// end, returning the rendered text and the index just past the group.
func formatTokens(tokens []string, i int, params Params, pattern string) (string, int, error) {
	var b strings.Builder
	for i < len(tokens) {
		tok := tokens[i]
		switch {
		case tok == ")":
			return b.String(), i + 1, nil
		case tok == "(":
			inner, next, err := formatTokens(tokens, i+1, params, pattern)
			if err == nil {
				b.WriteString(inner)
			}
			// A missing capture just drops the optional group.
			i = next
			if err != nil {
				i = skipGroup(tokens, i)
			}
		case tok == "*" || tok == "**":
			v, ok := params[SplatParam]
			if !ok {
				return "", i, errors.Newf(errors.CategoryValidation,
					"missing splat for path %q", pattern)
			}
			b.WriteString(v)
			i++
		case strings.HasPrefix(tok, ":"):
			name := tok[1:]
			v, ok := params[name]
			if !ok {
				return "", i, errors.Newf(errors.CategoryValidation,
					"missing %q parameter for path %q", name, pattern)
			}
			b.WriteString(url.PathEscape(v))
			i++
		case tok == `\(`:
			b.WriteString("(")
			i++
		case tok == `\)`:
			b.WriteString(")")
			i++
		default:
			b.WriteString(tok)
			i++
		}
	}
	return b.String(), i, nil
}

// skipGroup advances past the group whose "(" was already consumed when the
// caller bailed mid-group.
func skipGroup(tokens []string, i int) int {
	depth := 1
	for i < len(tokens) && depth > 0 {
		switch tokens[i] {
		case "(":
			depth++
		case ")":
			depth--
		}
		i++
	}
	return i
}
