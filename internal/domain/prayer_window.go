package domain

import (
	"fmt"
	"time"
)

// TomorrowLabel remplace la durée quand la prochaine prière est l'Imsak du lendemain.
const TomorrowLabel = "Besok"

func MinuteOfDay(t time.Time) int { return t.Hour()*60 + t.Minute() }

// ActivePrayer renvoie la prière dont la fenêtre [entry[i], entry[i+1]) contient now.
// La fenêtre d'Isha court jusqu'à minuit ; avant l'Imsak on est encore dans l'Isha
// de la veille, donc le résultat n'est jamais vide.
func ActivePrayer(s Schedule, now time.Time) PrayerKey {
	current := MinuteOfDay(now)
	for i, key := range PrayerOrder {
		upper := MinutesPerDay
		if i+1 < len(PrayerOrder) {
			upper = s.times[i+1].Minutes()
		}
		if current >= s.times[i].Minutes() && current < upper {
			return key
		}
	}
	return PrayerOrder[len(PrayerOrder)-1]
}

type NextPrayerCountdown struct {
	Key              PrayerKey `json:"key"`
	Name             string    `json:"name"`
	Time             string    `json:"time"`
	RemainingLabel   string    `json:"remainingLabel"`
	RemainingMinutes int       `json:"remainingMinutes"`
	Tomorrow         bool      `json:"tomorrow"`
}

// NextPrayer renvoie la première entrée strictement après now. Après l'Isha on
// renvoie l'Imsak avec le libellé "Besok" ; RemainingMinutes contient quand même
// la durée réelle à travers minuit.
func NextPrayer(s Schedule, now time.Time) NextPrayerCountdown {
	current := MinuteOfDay(now)
	for i, key := range PrayerOrder {
		at := s.times[i].Minutes()
		if at > current {
			diff := at - current
			return NextPrayerCountdown{
				Key:              key,
				Name:             key.Label(),
				Time:             s.times[i].String(),
				RemainingLabel:   RemainingLabel(diff),
				RemainingMinutes: diff,
			}
		}
	}
	first := PrayerOrder[0]
	return NextPrayerCountdown{
		Key:              first,
		Name:             first.Label(),
		Time:             s.times[0].String(),
		RemainingLabel:   TomorrowLabel,
		RemainingMinutes: MinutesPerDay - current + s.times[0].Minutes(),
		Tomorrow:         true,
	}
}

// RemainingLabel formate un écart en minutes: "-2j 5m" ou "-45m".
func RemainingLabel(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("-%dj %dm", h, m)
	}
	return fmt.Sprintf("-%dm", m)
}

// ExactMatch indique si now (heure:minute) tombe exactement sur une entrée.
// Les secondes sont ignorées ; le dédoublonnage appartient à l'appelant (FireState).
func ExactMatch(s Schedule, now time.Time) (PrayerKey, bool) {
	current := MinuteOfDay(now)
	for i, key := range PrayerOrder {
		if s.times[i].Minutes() == current {
			return key, true
		}
	}
	return "", false
}

type PrayerStatus struct {
	Key   PrayerKey `json:"key"`
	Name  string    `json:"name"`
	Time  string    `json:"time"`
	Label string    `json:"label,omitempty"`
	Now   bool      `json:"now"`
}

// Statuses annote chaque prière: "Sekarang" pendant sa minute, "{n}m lalu" dans l'heure qui suit.
func Statuses(s Schedule, now time.Time) []PrayerStatus {
	current := MinuteOfDay(now)
	out := make([]PrayerStatus, 0, len(PrayerOrder))
	for i, key := range PrayerOrder {
		st := PrayerStatus{Key: key, Name: key.Label(), Time: s.times[i].String()}
		diff := current - s.times[i].Minutes()
		switch {
		case diff == 0:
			st.Label = "Sekarang"
			st.Now = true
		case diff > 0 && diff < 60:
			st.Label = fmt.Sprintf("%dm lalu", diff)
		}
		out = append(out, st)
	}
	return out
}
