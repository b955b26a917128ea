package literal

import (
	"regexp"
	"sync"

	"github.com/sandrolain/gorule/pkg/types"
)

// compiled memoises patterns; entries are never removed.
var compiled sync.Map // string -> *regexp.Regexp

// ParseRegex compiles a regular expression with RE2 syntax. Compiled
// patterns are memoised process-wide, so repeated calls are cheap.
func ParseRegex(pattern string) (*regexp.Regexp, error) {
	if re, ok := compiled.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, types.NewLiteralError(types.ErrRegexSyntax, "invalid regular expression", pattern).WithCause(err)
	}
	actual, _ := compiled.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp), nil
}
