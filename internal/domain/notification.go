package domain

import (
	"fmt"
	"time"
)

type NotificationKind string

const (
	NotificationPrayer  NotificationKind = "prayer"
	NotificationReading NotificationKind = "reading"
)

type AdzanKind string

const (
	AdzanNone    AdzanKind = ""
	AdzanSubuh   AdzanKind = "subuh"
	AdzanRegular AdzanKind = "regular"
)

// AdzanFor: pas d'adzan pour l'Imsak, adzan spécifique pour Subuh.
func AdzanFor(key PrayerKey) AdzanKind {
	switch key {
	case Fajr:
		return AdzanSubuh
	case Dhuhr, Asr, Maghrib, Isha:
		return AdzanRegular
	default:
		return AdzanNone
	}
}

type Notification struct {
	ID      string           `json:"id"`
	Kind    NotificationKind `json:"kind"`
	Prayer  PrayerKey        `json:"prayer,omitempty"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Adzan   AdzanKind        `json:"adzan,omitempty"`
	FiredAt time.Time        `json:"firedAt"`
}

func PrayerNotification(key PrayerKey, at Clock, now time.Time) Notification {
	title := "Waktu Shalat " + key.Label()
	if key == Imsak {
		title = "Waktu Imsak"
	}
	return Notification{
		Kind:    NotificationPrayer,
		Prayer:  key,
		Title:   title,
		Message: fmt.Sprintf("Pukul %s. Mari sejenak menghadap Sang Pencipta.", at),
		Adzan:   AdzanFor(key),
		FiredAt: now,
	}
}

type LastRead struct {
	SurahNumber int       `json:"surahNumber"`
	SurahName   string    `json:"surahName"`
	Ayah        int       `json:"ayah,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

const ReadingReminderHour = 18

// ReadingReminder: sans lecture enregistrée on invite à 18:00 ; après 24h sans
// lecture on relance à chaque heure pile.
func ReadingReminder(last *LastRead, now time.Time) (Notification, bool) {
	if last == nil {
		if now.Hour() == ReadingReminderHour && now.Minute() == 0 {
			return Notification{
				Kind:    NotificationReading,
				Title:   "Mulai Kebiasaan Baik",
				Message: "Yuk mulai baca Al-Qur'an hari ini untuk ketenangan hati.",
				FiredAt: now,
			}, true
		}
		return Notification{}, false
	}
	if now.Sub(last.UpdatedAt) >= 24*time.Hour && now.Minute() == 0 {
		return Notification{
			Kind:    NotificationReading,
			Title:   "Lanjutkan Tadarus",
			Message: fmt.Sprintf("Terakhir Anda membaca %s. Mari istiqomah mengaji hari ini.", last.SurahName),
			FiredAt: now,
		}, true
	}
	return Notification{}, false
}

// FireMark repère la dernière minute (jour + minute) où un canal a déclenché.
type FireMark struct {
	Date   string `json:"date"`
	Minute int    `json:"minute"`
}

func markOf(now time.Time) FireMark {
	return FireMark{Date: DateKey(now), Minute: MinuteOfDay(now)}
}

// FireState garantit au plus un déclenchement par minute et par canal,
// quel que soit l'intervalle de polling. Il appartient à l'appelant.
type FireState struct {
	marks map[NotificationKind]FireMark
}

func NewFireState() *FireState {
	return &FireState{marks: map[NotificationKind]FireMark{}}
}

func (f *FireState) ShouldFire(kind NotificationKind, now time.Time) bool {
	if f == nil || f.marks == nil {
		return true
	}
	last, ok := f.marks[kind]
	return !ok || last != markOf(now)
}

func (f *FireState) Mark(kind NotificationKind, now time.Time) {
	if f.marks == nil {
		f.marks = map[NotificationKind]FireMark{}
	}
	f.marks[kind] = markOf(now)
}

func (f *FireState) Last(kind NotificationKind) (FireMark, bool) {
	m, ok := f.marks[kind]
	return m, ok
}

// Tick est le résultat d'une évaluation de polling.
type Tick struct {
	At     time.Time           `json:"at"`
	Date   string              `json:"date"`
	Active PrayerKey           `json:"active"`
	Next   NextPrayerCountdown `json:"next"`
	Due    *Notification       `json:"due,omitempty"`
}

// Evaluate applique les trois opérations à un instantané de Schedule et consulte
// state pour ne déclencher qu'une fois par minute correspondante.
func Evaluate(s Schedule, now time.Time, state *FireState) Tick {
	if state == nil {
		state = NewFireState()
	}
	t := Tick{
		At:     now,
		Date:   DateKey(now),
		Active: ActivePrayer(s, now),
		Next:   NextPrayer(s, now),
	}
	if key, ok := ExactMatch(s, now); ok && state.ShouldFire(NotificationPrayer, now) {
		n := PrayerNotification(key, s.At(key), now)
		t.Due = &n
		state.Mark(NotificationPrayer, now)
	}
	return t
}
