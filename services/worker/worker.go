package worker

import (
	"context"
	"time"

	"chollobot/internal/caption"
	"chollobot/internal/deal"
	"chollobot/internal/source"
	"chollobot/pkg/errs"
	"chollobot/services/feed"
	"chollobot/services/publisher"
)

// Logger is the minimal logging surface the worker needs
type Logger interface {
	LogError(component string, err error)
	LogInfo(format string, args ...interface{})
}

// Worker drives one pass of the pipeline: fetch from every source, rank,
// format and publish. It is fully sequential; the only pause is the fixed
// delay between successive posts.
type Worker struct {
	sources   []source.Source
	publisher publisher.Publisher
	feed      feed.Feed // optional, may be nil
	formatter *caption.Formatter
	logger    Logger
	maxPosts  int
	postDelay time.Duration

	sleep func(time.Duration)
	now   func() time.Time
}

// NewWorker creates a new worker
func NewWorker(
	sources []source.Source,
	pub publisher.Publisher,
	f feed.Feed,
	formatter *caption.Formatter,
	logger Logger,
	maxPosts int,
	postDelay time.Duration,
) *Worker {
	return &Worker{
		sources:   sources,
		publisher: pub,
		feed:      f,
		formatter: formatter,
		logger:    logger,
		maxPosts:  maxPosts,
		postDelay: postDelay,
		sleep:     time.Sleep,
		now:       time.Now,
	}
}

// Run executes one fetch-rank-publish pass and returns when the batch is
// done. A failing source or a failing post never aborts the rest.
func (w *Worker) Run(ctx context.Context) {
	all := w.fetchAll(ctx)

	ranked := deal.Rank(all, w.maxPosts)
	w.logger.LogInfo("publishing %d of %d deals (max_posts=%d)", len(ranked), len(all), w.maxPosts)

	w.publishAll(ctx, ranked)
}

// fetchAll collects accepted deals from every source in configuration
// order, so ties in the ranking keep vendor A's deals before vendor B's.
func (w *Worker) fetchAll(ctx context.Context) []deal.Deal {
	var all []deal.Deal
	for _, s := range w.sources {
		deals, err := s.FetchDeals(ctx)
		if err != nil {
			w.logger.LogError(s.GetName(), err)
			continue
		}
		w.logger.LogInfo("%s: found %d deals", s.GetProvider(), len(deals))
		all = append(all, deals...)
	}
	return all
}

// publishAll posts the ranked deals in order, waiting the fixed delay
// between successive calls. A failed post is logged and the batch
// continues with the next deal.
func (w *Worker) publishAll(ctx context.Context, ranked []deal.Deal) {
	for i, d := range ranked {
		if i > 0 {
			w.sleep(w.postDelay)
		}

		body := w.formatter.Format(d, w.now())
		if err := w.publisher.PublishPhoto(ctx, d.ImageURL, body); err != nil {
			w.logger.LogError("publisher", errs.NewPublish(string(d.Source), d.Title, err))
			continue
		}
		w.logger.LogInfo("published %d/%d: %.50s", i+1, len(ranked), d.Title)

		if w.feed != nil {
			if err := w.feed.Announce(ctx, d); err != nil {
				w.logger.LogError("feed", err)
			}
		}
	}
}
