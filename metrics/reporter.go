// Package metrics reports engagement activity to Datadog.
package metrics

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/murtaza309/streemza/model"
	Logger "github.com/murtaza309/streemza/utils/log"
	"github.com/murtaza309/streemza/worker"
)

const EngagementCounter = "streemza.engagement.count"

type ReporterConfig struct {
	Name string
}

// Reporter listens to engagement events on the EventBus and counts them in
// statsd, tagged by kind and by whether the event changed anything.
type Reporter struct {
	worker.Module

	Config ReporterConfig

	Statsd statsd.ClientInterface

	EventBus message.Subscriber
}

func NewReporter(config ReporterConfig, statsd statsd.ClientInterface, e message.Subscriber) *Reporter {
	return &Reporter{
		Config:   config,
		Statsd:   statsd,
		EventBus: e,
	}
}

// ReportEngagement counts a single engagement event.
func ReportEngagement(event *model.EngagementEvent, client statsd.ClientInterface) {
	tags := []string{
		"kind:" + string(event.Kind),
		"changed:" + strconv.FormatBool(event.Changed),
	}
	if err := client.Incr(EngagementCounter, tags, 1); err != nil {
		Logger.Log.Infoln("cannot report engagement", err)
	}
}

func (r *Reporter) ProcessEngagementEvents(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := r.EventBus.Subscribe(ctx, model.TopicEngagementEvent)
	if err != nil {
		return err
	}

	for msg := range messages {
		msg.Ack()

		event := model.EngagementEvent{}
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			Logger.Log.Errorf("cannot decode engagement event %s: %v", msg.UUID, err)
			continue
		}
		ReportEngagement(&event, r.Statsd)
	}

	return nil
}

func (r *Reporter) RunModule(ctx context.Context) error {
	return r.ProcessEngagementEvents(ctx)
}

func (r *Reporter) Name() string {
	return r.Config.Name
}

func (r *Reporter) Shutdown() {
	if err := r.Statsd.Flush(); err != nil {
		Logger.Log.Errorf("fail to flush statsd: %v", err)
	}
}
