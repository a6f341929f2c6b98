package domain

import (
	"strconv"
	"strings"
	"time"
)

type ScheduleSource string

const (
	SourceRemote   ScheduleSource = "aladhan"
	SourceCache    ScheduleSource = "cache"
	SourceFallback ScheduleSource = "fallback"
)

const DateLayout = "2006-01-02"

func DateKey(t time.Time) string { return t.Format(DateLayout) }

type HijriDate struct {
	Day     string `json:"day"`
	Month   string `json:"month"`
	MonthAr string `json:"monthAr,omitempty"`
	Year    string `json:"year"`
}

// String donne la forme affichée, ex: "18 Sha'ban 1447 H".
func (h HijriDate) String() string {
	if h.Day == "" || h.Month == "" || h.Year == "" {
		return ""
	}
	return strings.Join([]string{h.Day, h.Month, h.Year, "H"}, " ")
}

// DailySchedule est un Schedule rattaché à une date civile et à sa provenance.
type DailySchedule struct {
	Date      string         `json:"date"`
	Readable  string         `json:"readable,omitempty"`
	Hijri     HijriDate      `json:"hijri"`
	Timezone  string         `json:"timezone,omitempty"`
	Timings   Schedule       `json:"timings"`
	Source    ScheduleSource `json:"source"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

func (d DailySchedule) IsFor(t time.Time) bool { return d.Date == DateKey(t) }

// FallbackDailySchedule habille les heures par défaut pour le jour demandé.
func FallbackDailySchedule(day time.Time) DailySchedule {
	return DailySchedule{
		Date:      DateKey(day),
		Readable:  day.Format("02 Jan 2006"),
		Hijri:     TabularHijri(day),
		Timezone:  day.Location().String(),
		Timings:   FallbackSchedule(),
		Source:    SourceFallback,
		FetchedAt: day,
	}
}

var hijriMonths = [...]string{
	"Muharram", "Safar", "Rabi' al-awwal", "Rabi' al-thani", "Jumada al-ula", "Jumada al-akhirah",
	"Rajab", "Sha'ban", "Ramadan", "Shawwal", "Dhu al-Qi'dah", "Dhu al-Hijjah",
}

// TabularHijri convertit la date civile de t avec le calendrier hégirien arithmétique.
// Peut différer d'un jour de la date publiée par l'observation du croissant.
func TabularHijri(t time.Time) HijriDate {
	y, mo, d := t.Date()
	m := int(mo)

	a := (m - 14) / 12
	jd := (1461*(y+4800+a))/4 + (367*(m-2-12*a))/12 - (3*((y+4900+a)/100))/4 + d - 32075

	l := jd - 1948440 + 10632
	n := (l - 1) / 10631
	l = l - 10631*n + 354
	j := ((10985-l)/5316)*((50*l)/17719) + (l/5670)*((43*l)/15238)
	l = l - ((30-j)/15)*((17719*j)/50) - (j/16)*((15238*j)/43) + 29
	hm := (24 * l) / 709
	hd := l - (709*hm)/24
	hy := 30*n + j - 30

	return HijriDate{
		Day:   strconv.Itoa(hd),
		Month: hijriMonths[hm-1],
		Year:  strconv.Itoa(hy),
	}
}
