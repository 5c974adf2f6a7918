package engagement

import (
	"context"

	"github.com/murtaza309/streemza/model"
	"github.com/murtaza309/streemza/store"
	"github.com/murtaza309/streemza/utils"
	"github.com/pkg/errors"
)

// RegisterView adds exactly one view to the video and returns the new count.
// The client decides when a playback counts as a view; there is no dedup by
// viewer. The increment is done in place by the store, so concurrent views
// never get lost.
func (e *Engine) RegisterView(ctx context.Context, videoId string) (int64, error) {
	views, err := e.videos.IncrementVideoViews(ctx, videoId)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return 0, utils.ErrVideoNotFound
		}
		return 0, errors.Wrap(err, "increment views")
	}

	e.publishEvent(model.EngagementEvent{
		Kind:    model.EngagementView,
		VideoId: videoId,
		Changed: true,
	})
	return views, nil
}
