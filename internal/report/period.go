package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mailledger/internal/core"
)

const (
	Quarterly  PeriodKind = "quarterly"
	SemiAnnual PeriodKind = "semiannual"
	Annual     PeriodKind = "annual"
)

type (
	PeriodKind string

	// Period is a calendar-bounded reporting window. Both boundaries are
	// inclusive and fall in the reference instant's year.
	Period struct {
		Kind  PeriodKind
		Label string
		Start core.Date
		End   core.Date
	}
)

// ErrInvalidPeriodKind is returned for an unrecognized period kind. Unlike
// malformed amount tokens this is a caller-contract violation and is never
// swallowed.
var ErrInvalidPeriodKind = errors.New("invalid report period kind")

// ParsePeriodKind maps a config or request string to a PeriodKind.
func ParsePeriodKind(s string) (PeriodKind, error) {
	switch PeriodKind(strings.ToLower(strings.TrimSpace(s))) {
	case Quarterly:
		return Quarterly, nil
	case SemiAnnual:
		return SemiAnnual, nil
	case Annual:
		return Annual, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriodKind, s)
}

// ResolvePeriod computes the inclusive boundaries and label of the period of
// the given kind containing the reference instant. The end of a period is
// computed as day zero of the following month, which yields the last valid
// day regardless of month length or leap years.
func ResolvePeriod(kind PeriodKind, ref time.Time) (Period, error) {
	year := ref.Year()
	month := int(ref.Month()) // 1-12

	switch kind {
	case Quarterly:
		quarter := (month - 1) / 3 // 0-based
		firstMonth := quarter*3 + 1
		return Period{
			Kind:  kind,
			Label: fmt.Sprintf("Q%d %d", quarter+1, year),
			Start: core.NewDate(year, firstMonth, 1),
			End:   core.NewDate(year, firstMonth+3, 0),
		}, nil
	case SemiAnnual:
		if month <= 6 {
			return Period{
				Kind:  kind,
				Label: fmt.Sprintf("H1 %d", year),
				Start: core.NewDate(year, 1, 1),
				End:   core.NewDate(year, 7, 0),
			}, nil
		}
		return Period{
			Kind:  kind,
			Label: fmt.Sprintf("H2 %d", year),
			Start: core.NewDate(year, 7, 1),
			End:   core.NewDate(year, 13, 0),
		}, nil
	case Annual:
		return Period{
			Kind:  kind,
			Label: fmt.Sprintf("FY %d", year),
			Start: core.NewDate(year, 1, 1),
			End:   core.NewDate(year, 12, 31),
		}, nil
	}
	return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriodKind, kind)
}

// Contains reports whether the date falls within the period, boundaries
// included.
func (p Period) Contains(d core.Date) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}
