// Package worker runs the server's long lived background modules (live push,
// redis relay, metrics) next to the HTTP server and shares an EventBus
// between them.
package worker

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	Logger "github.com/murtaza309/streemza/utils/log"
)

// Engine manages shared resources and execution lifecycle of each module.
type Engine struct {
	// A list of modules that will be run in this Engine. Module's lifetime is
	// bound to Engine's lifetime. Each Module will be ran in a separate routine.
	Modules []Module

	// Root this engine is running on
	ctx context.Context

	// Cancel function for root context, used for graceful shutdown
	cancel context.CancelFunc

	// The EventBus this engine manages. Request handlers publish on it, modules
	// subscribe to it.
	EventBus *gochannel.GoChannel
}

// NewEventBus creates the in-process EventBus. Publishing never waits for
// subscribers to ack.
func NewEventBus() *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            256,
			BlockPublishUntilSubscriberAck: false,
		},
		watermill.NewStdLogger(false, false),
	)
}

// Create a new Engine given the provided modules and event bus.
func NewEngine(ms []Module, ctx context.Context, cancel context.CancelFunc, e *gochannel.GoChannel) *Engine {
	return &Engine{
		Modules:  ms,
		ctx:      ctx,
		cancel:   cancel,
		EventBus: e,
	}
}

// eachModule runs f for every module in its own goroutine and waits for all
// of them.
func (e *Engine) eachModule(f func(m Module)) {
	var wg sync.WaitGroup
	wg.Add(len(e.Modules))
	for _, m := range e.Modules {
		go func(m Module) {
			defer wg.Done()
			f(m)
		}(m)
	}
	wg.Wait()
}

// Run blocks until every module has returned, which normally happens only
// after Shutdown.
func (e *Engine) Run() {
	e.eachModule(func(m Module) {
		Logger.Log.Infof("start engine module %s", m.Name())
		RunModuleWithGracefulRestart(e.ctx, m)
		Logger.Log.Infof("module %s finished execution", m.Name())
	})
}

// Shutdown cancels the engine context, shuts every module down and closes the
// EventBus. Publishing after Shutdown fails.
func (e *Engine) Shutdown() {
	Logger.Log.Info("engine shutting down")
	e.cancel()

	e.eachModule(func(m Module) {
		m.Shutdown()
		Logger.Log.Infof("module %s shut down", m.Name())
	})

	if e.EventBus == nil {
		return
	}
	if err := e.EventBus.Close(); err != nil {
		Logger.Log.WithError(err).Error("fail to close event bus")
	}
}
