package mqtt

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/salam-labs/adzan/internal/domain"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t doneToken) Error() error { return t.err }

var _ pahomqtt.Token = doneToken{}

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeClient struct {
	mu   sync.Mutex
	msgs []published
}

func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{topic: topic, qos: qos, retained: retained, payload: payload.([]byte)})
	return doneToken{}
}

func (f *fakeClient) Disconnect(uint) {}

func TestPublisher_Notify(t *testing.T) {
	fc := &fakeClient{}
	p := newPublisher(zerolog.Nop(), fc, "masjid")

	n := domain.PrayerNotification(domain.Maghrib, domain.Clock{Hour: 18, Minute: 15}, time.Now())
	require.NoError(t, p.Notify(context.Background(), n))

	require.Len(t, fc.msgs, 1)
	require.Equal(t, "masjid/notification/prayer", fc.msgs[0].topic)
	require.Equal(t, byte(1), fc.msgs[0].qos)

	var got domain.Notification
	require.NoError(t, json.Unmarshal(fc.msgs[0].payload, &got))
	require.Equal(t, "Waktu Shalat Maghrib", got.Title)
}

func TestPublisher_PublishStateRetained(t *testing.T) {
	fc := &fakeClient{}
	p := newPublisher(zerolog.Nop(), fc, "")

	now := time.Date(2026, time.February, 6, 10, 0, 0, 0, time.UTC)
	tick := domain.Evaluate(domain.FallbackSchedule(), now, domain.NewFireState())
	require.NoError(t, p.PublishState(context.Background(), tick))

	require.Len(t, fc.msgs, 2)
	require.Equal(t, "adzan/state", fc.msgs[0].topic)
	require.True(t, fc.msgs[0].retained)
	require.Equal(t, "adzan/active", fc.msgs[1].topic)
	require.Equal(t, "Fajr", string(fc.msgs[1].payload))
}
