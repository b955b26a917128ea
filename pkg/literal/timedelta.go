package literal

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sandrolain/gorule/pkg/types"
)

// number is an unsigned decimal with an optional ',' or '.' fraction.
const number = `([0-9]+(?:[,.][0-9]+)?)`

var timedeltaRe = regexp.MustCompile(
	`^P(?:` + number + `W)?(?:` + number + `D)?(?:T(?:` + number + `H)?(?:` + number + `M)?(?:` + number + `S)?)?$`,
)

// Component scales, in the order of the capture groups.
var timedeltaUnits = [...]time.Duration{
	7 * 24 * time.Hour,
	24 * time.Hour,
	time.Hour,
	time.Minute,
	time.Second,
}

// ParseTimedelta parses an ISO-8601 duration of the form
// P[nW][nD][T[nH][nM][nS]], e.g. P1W2DT3H or PT0,5S.
func ParseTimedelta(s string) (time.Duration, error) {
	if s == "P" || s == "PT" {
		return 0, types.NewLiteralError(types.ErrTimedeltaSyntax, "empty timedelta string", s)
	}
	m := timedeltaRe.FindStringSubmatch(s)
	if m == nil || strings.HasSuffix(s, "T") {
		return 0, types.NewLiteralError(types.ErrTimedeltaSyntax, "invalid timedelta string", s)
	}

	var total float64
	for i, unit := range timedeltaUnits {
		part := m[i+1]
		if part == "" {
			continue
		}
		n, err := strconv.ParseFloat(strings.ReplaceAll(part, ",", "."), 64)
		if err != nil {
			return 0, types.NewLiteralError(types.ErrTimedeltaSyntax, "invalid timedelta string", s).WithCause(err)
		}
		total += n * float64(unit)
	}
	return time.Duration(total), nil
}
