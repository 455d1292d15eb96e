package mocknode

import (
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
)

// retryFor calls do every delay until it returns true or duration has elapsed.
// do is given the time left. Returns true when do never succeeded.
func retryFor(do func(time.Duration) bool, delay, duration time.Duration) bool {
	start := time.Now()
	err := retry.Do(func() error {
		timeLeft := duration - time.Since(start)
		if !do(timeLeft) {
			return errors.New("retry")
		}
		return nil
	},
		retry.Attempts(0),
		retry.Delay(delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return err != nil && time.Since(start) <= duration
		}),
	)
	return err != nil
}
