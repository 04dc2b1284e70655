package leaves

import (
	"time"

	"github.com/shopspring/decimal"
)

// GrantSpec describes a leave grant due on a given day.
type GrantSpec struct {
	Days      decimal.Decimal
	ExpiresOn time.Time
	Reason    string
}

// EvaluateGrant returns the grant due for a user on the given day, or nil.
// Rules:
//   - during the first year of service, 1.0 day on the 1st of each month;
//   - on each service anniversary, 15 + years/2 days (integer division),
//     expiring the day before the next anniversary.
func EvaluateGrant(hiredAt, today time.Time) *GrantSpec {
	hiredAt = dateOnly(hiredAt)
	today = dateOnly(today)
	if !today.After(hiredAt) {
		return nil
	}

	firstAnniversary := hiredAt.AddDate(1, 0, 0)
	if today.Before(firstAnniversary) {
		if today.Day() != 1 {
			return nil
		}
		return &GrantSpec{
			Days:      decimal.NewFromInt(1),
			ExpiresOn: firstAnniversary.AddDate(0, 0, -1),
			Reason:    "monthly",
		}
	}

	years := yearsBetween(hiredAt, today)
	anniversary := hiredAt.AddDate(years, 0, 0)
	if !anniversary.Equal(today) {
		return nil
	}
	return &GrantSpec{
		Days:      decimal.NewFromInt(int64(15 + years/2)),
		ExpiresOn: hiredAt.AddDate(years+1, 0, -1),
		Reason:    "anniversary",
	}
}

func yearsBetween(from, to time.Time) int {
	years := to.Year() - from.Year()
	if from.AddDate(years, 0, 0).After(to) {
		years--
	}
	return years
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
