package classifier

import "time"

// HumanDate renders a YYYY-MM-DD date relative to now: "hoy", "mañana",
// "pasado mañana" or dd/mm/yyyy. Unparseable input is returned unchanged.
func HumanDate(date string, now time.Time) string {
	if date == "" {
		return ""
	}
	d, err := time.ParseInLocation(dateLayout, date, now.Location())
	if err != nil {
		return date
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case d.Equal(today):
		return "hoy"
	case d.Equal(today.AddDate(0, 0, 1)):
		return "mañana"
	case d.Equal(today.AddDate(0, 0, 2)):
		return "pasado mañana"
	}
	return d.Format("02/01/2006")
}
