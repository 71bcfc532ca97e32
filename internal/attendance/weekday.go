package attendance

import "time"

// Locale selects the language of weekday names.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleDanish  Locale = "da"
)

var weekdayNames = map[Locale][7]string{
	LocaleEnglish: {"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
	LocaleDanish:  {"Søndag", "Mandag", "Tirsdag", "Onsdag", "Torsdag", "Fredag", "Lørdag"},
}

// ParseLocale returns the locale for a language tag, defaulting to Danish.
func ParseLocale(tag string) Locale {
	if _, ok := weekdayNames[Locale(tag)]; ok {
		return Locale(tag)
	}
	return LocaleDanish
}

// WeekdayName returns the name of day in the given locale.
func WeekdayName(day time.Weekday, locale Locale) string {
	names, ok := weekdayNames[locale]
	if !ok {
		names = weekdayNames[LocaleDanish]
	}
	return names[day%7]
}

// sortKey orders Monday first and Sunday last.
func sortKey(day int) int {
	if day == int(time.Sunday) {
		return 7
	}
	return day
}
