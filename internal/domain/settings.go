package domain

// MethodKemenag est la méthode de calcul aladhan du Kemenag RI.
const MethodKemenag = 11

type Location struct {
	Coordinates
	// City est résolue par géocodage inverse, best-effort.
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

type Settings struct {
	// Location vide tant que l'utilisateur n'a rien choisi : on sert alors le fallback.
	Location *Location `json:"location,omitempty"`

	// Méthode de calcul passée à la source (11 = Kemenag RI).
	Method int `json:"method"`

	// Fuseau IANA utilisé pour "maintenant". Vide: fuseau de la machine.
	Timezone string `json:"timezone"`

	NotificationsEnabled bool `json:"notificationsEnabled"`
	AdzanMuted           bool `json:"adzanMuted"`
	ReadingReminders     bool `json:"readingReminders"`
}

func DefaultSettings() Settings {
	return Settings{
		Method:               MethodKemenag,
		NotificationsEnabled: true,
		ReadingReminders:     true,
	}
}
