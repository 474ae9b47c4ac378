package cal

import (
	"time"

	"github.com/huangsam/gapcheck/schema"
)

// Calendars shipped with gapcheck.
var (
	Standard Calendar = gregorian{}
	Julian   Calendar = julian{}
	NoLeap   Calendar = newFixed(schema.NoLeapCalendar, [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31})
	AllLeap  Calendar = newFixed(schema.AllLeapCalendar, [12]int{31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31})
	Day360   Calendar = newFixed(schema.Day360Calendar, [12]int{30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30})
)

const secondsPerDay = 24 * 60 * 60

// gregorian is the proleptic Gregorian calendar, backed by package time.
type gregorian struct{}

func (gregorian) Name() schema.CalendarName { return schema.StandardCalendar }

func (gregorian) DaysInMonth(year, month int) int {
	if month == 2 && (year%4 == 0 && (year%100 != 0 || year%400 == 0)) {
		return 29
	}
	return noLeapMonths[month-1]
}

func (gregorian) DayNumber(d Date) int {
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	return int(t.Unix() / secondsPerDay)
}

func (gregorian) FromDayNumber(n int) Date {
	t := time.Unix(int64(n)*secondsPerDay, 0).UTC()
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// julian uses the Julian Day Number conversion for the Julian calendar.
type julian struct{}

func (julian) Name() schema.CalendarName { return schema.JulianCalendar }

func (julian) DaysInMonth(year, month int) int {
	if month == 2 && year%4 == 0 {
		return 29
	}
	return noLeapMonths[month-1]
}

func (julian) DayNumber(d Date) int {
	a := (14 - d.Month) / 12
	y := d.Year + 4800 - a
	m := d.Month + 12*a - 3
	return d.Day + (153*m+2)/5 + 365*y + floorDiv(y, 4) - 32083
}

func (julian) FromDayNumber(n int) Date {
	c := n + 32082
	d := floorDiv(4*c+3, 1461)
	e := c - floorDiv(1461*d, 4)
	m := (5*e + 2) / 153
	return Date{
		Year:  d - 4800 + m/10,
		Month: m + 3 - 12*(m/10),
		Day:   e - (153*m+2)/5 + 1,
	}
}

var noLeapMonths = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// fixed is any calendar whose years all have the same month lengths.
type fixed struct {
	name       schema.CalendarName
	monthDays  [12]int
	cumulative [13]int
}

func newFixed(name schema.CalendarName, monthDays [12]int) fixed {
	f := fixed{name: name, monthDays: monthDays}
	for i, n := range monthDays {
		f.cumulative[i+1] = f.cumulative[i] + n
	}
	return f
}

func (f fixed) Name() schema.CalendarName { return f.name }

func (f fixed) DaysInMonth(_, month int) int { return f.monthDays[month-1] }

func (f fixed) DayNumber(d Date) int {
	return d.Year*f.cumulative[12] + f.cumulative[d.Month-1] + d.Day - 1
}

func (f fixed) FromDayNumber(n int) Date {
	yearDays := f.cumulative[12]
	year := floorDiv(n, yearDays)
	rem := n - year*yearDays
	month := 1
	for month < 12 && rem >= f.cumulative[month] {
		month++
	}
	return Date{Year: year, Month: month, Day: rem - f.cumulative[month-1] + 1}
}
