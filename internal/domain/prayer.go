package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type PrayerKey string

const (
	Imsak   PrayerKey = "Imsak"
	Fajr    PrayerKey = "Fajr"
	Dhuhr   PrayerKey = "Dhuhr"
	Asr     PrayerKey = "Asr"
	Maghrib PrayerKey = "Maghrib"
	Isha    PrayerKey = "Isha"
)

// PrayerOrder est l'ordre canonique d'une journée. Les index de Schedule le suivent.
var PrayerOrder = [...]PrayerKey{Imsak, Fajr, Dhuhr, Asr, Maghrib, Isha}

var prayerLabels = map[PrayerKey]string{
	Imsak:   "Imsak",
	Fajr:    "Subuh",
	Dhuhr:   "Dzuhur",
	Asr:     "Ashar",
	Maghrib: "Maghrib",
	Isha:    "Isya",
}

// Label renvoie le nom affiché (Subuh, Dzuhur, ...).
func (k PrayerKey) Label() string {
	if l, ok := prayerLabels[k]; ok {
		return l
	}
	return string(k)
}

func (k PrayerKey) Valid() bool {
	_, ok := prayerLabels[k]
	return ok
}

func (k PrayerKey) index() int {
	for i, p := range PrayerOrder {
		if p == k {
			return i
		}
	}
	return -1
}

const MinutesPerDay = 24 * 60

// Clock est une heure locale à la minute, sans date.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) Minutes() int { return c.Hour*60 + c.Minute }

func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

func (c Clock) MarshalJSON() ([]byte, error) { return json.Marshal(c.String()) }

func (c *Clock) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseClock lit "HH:MM" en 24h. Une annotation de fuseau après un espace
// ("04:31 (WIB)") est ignorée.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return Clock{}, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid minute in %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return Clock{}, fmt.Errorf("time out of range %q", s)
	}
	return Clock{Hour: h, Minute: m}, nil
}

var ErrInvalidSchedule = errors.New("invalid prayer schedule")

// Schedule contient les six heures d'une journée, dans l'ordre de PrayerOrder.
// La valeur est immuable : un nouveau fetch produit un nouveau Schedule.
type Schedule struct {
	times [len(PrayerOrder)]Clock
}

type ScheduleEntry struct {
	Key  PrayerKey `json:"key"`
	Name string    `json:"name"`
	Time Clock     `json:"time"`
}

// NewSchedule construit un Schedule à partir du format amont (nom -> "HH:MM").
// Clés manquantes, heures illisibles ou ordre non croissant renvoient ErrInvalidSchedule.
func NewSchedule(timings map[string]string) (Schedule, error) {
	var s Schedule
	for i, key := range PrayerOrder {
		raw, ok := timings[string(key)]
		if !ok || strings.TrimSpace(raw) == "" {
			return Schedule{}, fmt.Errorf("%w: missing %s", ErrInvalidSchedule, key)
		}
		c, err := ParseClock(raw)
		if err != nil {
			return Schedule{}, fmt.Errorf("%w: %s: %v", ErrInvalidSchedule, key, err)
		}
		s.times[i] = c
	}
	if err := s.Validate(); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

// MustSchedule est réservé aux constantes et aux tests.
func MustSchedule(timings map[string]string) Schedule {
	s, err := NewSchedule(timings)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Schedule) Validate() error {
	for i := 1; i < len(s.times); i++ {
		if s.times[i].Minutes() < s.times[i-1].Minutes() {
			return fmt.Errorf("%w: %s (%s) before %s (%s)", ErrInvalidSchedule,
				PrayerOrder[i], s.times[i], PrayerOrder[i-1], s.times[i-1])
		}
	}
	return nil
}

func (s Schedule) At(key PrayerKey) Clock {
	i := key.index()
	if i < 0 {
		return Clock{}
	}
	return s.times[i]
}

func (s Schedule) Entries() []ScheduleEntry {
	out := make([]ScheduleEntry, 0, len(PrayerOrder))
	for i, key := range PrayerOrder {
		out = append(out, ScheduleEntry{Key: key, Name: key.Label(), Time: s.times[i]})
	}
	return out
}

func (s Schedule) Timings() map[string]string {
	out := make(map[string]string, len(PrayerOrder))
	for i, key := range PrayerOrder {
		out[string(key)] = s.times[i].String()
	}
	return out
}

func (s Schedule) MarshalJSON() ([]byte, error) { return json.Marshal(s.Timings()) }

func (s *Schedule) UnmarshalJSON(b []byte) error {
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	parsed, err := NewSchedule(m)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// FallbackTimings sont les heures standard WIB utilisées quand aucune source ne répond.
var FallbackTimings = map[string]string{
	"Imsak":   "04:30",
	"Fajr":    "04:40",
	"Dhuhr":   "12:05",
	"Asr":     "15:20",
	"Maghrib": "18:15",
	"Isha":    "19:25",
}

func FallbackSchedule() Schedule { return MustSchedule(FallbackTimings) }
