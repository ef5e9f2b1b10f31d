// Package reports computes the read-only statistical views over the session
// and recording history. Everything here is pure: the repository fetches the
// rows, this package does the math.
package reports

import (
	"time"

	"github.com/KRaymonne/pro/internal/apperr"
)

// Period tokens, anchored to "now" at resolution time.
const (
	PeriodWeek    = "semaine"
	PeriodMonth   = "mois"
	PeriodQuarter = "trimestre"
	PeriodYear    = "annee"
)

// Window is a resolved [Start, End) reporting range.
type Window struct {
	Start time.Time `json:"debut"`
	End   time.Time `json:"fin"`
	Label string    `json:"type"`
}

// ResolveWindow turns a period token or explicit bounds into a concrete
// window. Explicit bounds override the token; the token defaults to "mois".
//
// Token semantics: semaine is a rolling seven days; mois, trimestre and annee
// are anchored to the first day of the current calendar month, quarter and
// year respectively, all ending at now.
func ResolveWindow(token string, explicitStart, explicitEnd *time.Time, now time.Time) (Window, error) {
	if explicitStart != nil || explicitEnd != nil {
		if explicitStart == nil || explicitEnd == nil {
			return Window{}, apperr.Validation("les deux bornes de période sont requises")
		}
		if !explicitStart.Before(*explicitEnd) {
			return Window{}, apperr.Validation("la date de début doit précéder la date de fin")
		}
		return Window{Start: *explicitStart, End: *explicitEnd, Label: "personnalisee"}, nil
	}

	if token == "" {
		token = PeriodMonth
	}

	var start time.Time
	switch token {
	case PeriodWeek:
		start = now.AddDate(0, 0, -7)
	case PeriodMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case PeriodQuarter:
		quarterStart := time.Month((int(now.Month())-1)/3*3 + 1)
		start = time.Date(now.Year(), quarterStart, 1, 0, 0, 0, 0, now.Location())
	case PeriodYear:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return Window{}, apperr.Validation("période invalide")
	}

	return Window{Start: start, End: now, Label: token}, nil
}
