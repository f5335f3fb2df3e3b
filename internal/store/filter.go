package store

import (
	"math"
	"strings"
)

// Filter selects stored messages by exact key and optional time bounds.
//
// Both bounds are strict: TimeGt keeps rows with time > TimeGt and TimeLt
// keeps rows with time < TimeLt. A nil bound leaves that side open.
type Filter struct {
	Key    string
	TimeGt *uint64
	TimeLt *uint64
}

// Where returns a parameterised SQL predicate for f and its arguments.
//
// Stored times are BIGINT, so a bound above math.MaxInt64 is folded into the
// predicate instead of being passed as an argument: time > huge matches
// nothing and time < huge matches everything.
func (f Filter) Where() (string, []any) {
	clauses := []string{`"key" = ?`}
	args := []any{f.Key}

	if f.TimeGt != nil {
		if *f.TimeGt > math.MaxInt64 {
			clauses = append(clauses, "1 = 0")
		} else {
			clauses = append(clauses, `"time" > ?`)
			args = append(args, int64(*f.TimeGt))
		}
	}
	if f.TimeLt != nil && *f.TimeLt <= math.MaxInt64 {
		clauses = append(clauses, `"time" < ?`)
		args = append(args, int64(*f.TimeLt))
	}

	return strings.Join(clauses, " AND "), args
}
