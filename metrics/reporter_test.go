package metrics

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/murtaza309/streemza/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type incr struct {
	name string
	tags []string
}

// fakeStatsd records Incr calls, every other method panics.
type fakeStatsd struct {
	statsd.ClientInterface

	m       sync.Mutex
	incrs   []incr
	flushed bool
}

func (f *fakeStatsd) Incr(name string, tags []string, rate float64) error {
	f.m.Lock()
	defer f.m.Unlock()
	f.incrs = append(f.incrs, incr{name: name, tags: tags})
	return nil
}

func (f *fakeStatsd) Flush() error {
	f.m.Lock()
	defer f.m.Unlock()
	f.flushed = true
	return nil
}

func (f *fakeStatsd) count() int {
	f.m.Lock()
	defer f.m.Unlock()
	return len(f.incrs)
}

func TestReportEngagement(t *testing.T) {
	client := &fakeStatsd{}

	ReportEngagement(&model.EngagementEvent{Kind: model.EngagementLike, Changed: true}, client)
	ReportEngagement(&model.EngagementEvent{Kind: model.EngagementView, Changed: true}, client)

	require.Equal(t, 2, client.count())
	assert.Equal(t, incr{name: EngagementCounter, tags: []string{"kind:like", "changed:true"}}, client.incrs[0])
	assert.Equal(t, []string{"kind:view", "changed:true"}, client.incrs[1].tags)
}

func TestReporterConsumesEventBus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})
	defer bus.Close()

	payload, err := json.Marshal(model.EngagementEvent{Kind: model.EngagementSubscribe, Changed: false})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(model.TopicEngagementEvent,
		message.NewMessage(watermill.NewUUID(), []byte("{broken")),
		message.NewMessage(watermill.NewUUID(), payload),
	))

	client := &fakeStatsd{}
	reporter := NewReporter(ReporterConfig{Name: "reporter"}, client, bus)
	go reporter.RunModule(ctx)

	assert.Eventually(t, func() bool { return client.count() == 1 }, time.Second, 10*time.Millisecond)
	client.m.Lock()
	assert.Equal(t, []string{"kind:subscribe", "changed:false"}, client.incrs[0].tags)
	client.m.Unlock()

	reporter.Shutdown()
	assert.True(t, client.flushed)
}
