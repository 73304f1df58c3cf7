package watch

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

// Schedule calls fn on the cron spec until ctx is done. Specs have the
// standard five fields or are descriptors such as "@hourly" or "@every 10m".
// Schedule waits for a running fn to finish before returning.
func Schedule(ctx context.Context, spec string, fn func()) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, fn); err != nil {
		return fmt.Errorf("Schedule: %w", err)
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
