package ports

type EventBus interface {
	Publish(topic string, payload []byte)
	// Subscribe filtre par topic ; aucun topic = tout recevoir.
	Subscribe(topics ...string) (ch <-chan Event, cancel func())
}

type Event struct {
	Topic   string
	Payload []byte
}

const (
	TopicScheduleUpdated  = "schedule.updated"
	TopicPrayerActive     = "prayer.active"
	TopicPrayerCountdown  = "prayer.countdown"
	TopicPrayerDue        = "prayer.due"
	TopicReadingDue       = "reading.due"
	TopicNotificationSent = "notification.sent"
	TopicSettingsUpdated  = "settings.updated"
)
