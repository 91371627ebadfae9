package wilma

import (
	"context"
	"duty-report/models"

	"golang.org/x/sync/errgroup"
)

// ScheduleResult is the outcome of fetching one person's schedule.
// Exactly one of Events and Err is meaningful.
type ScheduleResult struct {
	Person models.Person
	Events []models.Event
	Err    error
}

// FetchAll fetches every person's schedule with at most the configured
// number of requests in flight. Results come back in input order with
// per-person errors, leaving skip-or-abort to the caller.
//
// If ctx is cancelled before every fetch finished, FetchAll returns
// ctx.Err() and no results.
func (c *Client) FetchAll(ctx context.Context, people []models.Person) ([]ScheduleResult, error) {
	results := make([]ScheduleResult, len(people))

	var g errgroup.Group
	g.SetLimit(c.workers)

	for i, p := range people {
		if ctx.Err() != nil {
			break
		}
		i, p := i, p // per-iteration copies; module targets go 1.21 loop semantics
		g.Go(func() error {
			events, err := c.Schedule(ctx, p)
			results[i] = ScheduleResult{Person: p, Events: events, Err: err}
			if err != nil {
				c.logger.Warn("schedule fetch failed", "kind", p.Kind, "id", p.ID, "error", err)
			} else {
				c.logger.Debug("schedule fetched", "kind", p.Kind, "id", p.ID, "events", len(events))
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
