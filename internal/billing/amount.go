package billing

import (
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/text/width"
)

// Amount is a whole-yen value decoded leniently from form input: JSON
// numbers and strings are both accepted, and anything unusable becomes 0.
type Amount int64

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*a = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			*a = 0
			return nil
		}
		*a = Amount(ParseAmount(str))
		return nil
	}
	*a = Amount(ParseAmount(s))
	return nil
}

func (a Amount) Int64() int64 {
	return int64(a)
}

// MaxAmount is the largest accepted yen amount. Sums of two capped amounts
// plus tax stay far inside int64.
const MaxAmount int64 = 1_000_000_000_000_000

// ParseAmount coerces raw input to a yen amount in [0, MaxAmount]. Full-width
// digits are folded, thousands separators and the yen sign are dropped, and
// decimals are truncated. Parse failures and out-of-range values yield 0.
func ParseAmount(raw string) int64 {
	s := width.Fold.String(strings.TrimSpace(raw))
	s = strings.NewReplacer(",", "", "¥", "", "\\", "", "円", "", " ", "").Replace(s)
	if s == "" {
		return 0
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 || n > MaxAmount {
		return 0
	}
	return n
}
