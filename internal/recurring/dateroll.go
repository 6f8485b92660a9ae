package recurring

import (
	"time"

	"fintrack/internal/core"
)

// RollDate shifts origin forward by offset months, keeping the origin day
// where possible. When the origin day does not exist in the target month
// (day 31 into a 30-day month, day 29-31 into February) the result is
// clamped to the last day of the target month instead of rolling over.
func RollDate(origin core.Date, offset int) core.Date {
	months := origin.Month() - 1 + offset
	year := origin.Year() + months/12
	month := months%12 + 1
	return RollIntoMonth(origin, year, month)
}

// RollIntoMonth places the origin day into an explicit target month,
// clamping to the month's last day when needed.
func RollIntoMonth(origin core.Date, year, month int) core.Date {
	day := origin.Day()
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return core.NewDate(year, month, day)
}

func daysInMonth(year, month int) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
