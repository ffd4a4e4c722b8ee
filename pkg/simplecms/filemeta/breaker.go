package filemeta

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// ErrCircuitOpen is returned while the storage circuit breaker rejects calls.
var ErrCircuitOpen = errors.New("file storage circuit breaker is open")

// BreakerConfig holds the circuit breaker settings for storage calls.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that trip the circuit.
	MaxFailures uint32

	// Timeout is how long the circuit stays open before allowing a probe.
	Timeout time.Duration

	// HalfOpenMaxRequests is the number of probes allowed while half-open.
	HalfOpenMaxRequests uint32
}

// DefaultBreakerConfig trips after 3 consecutive failures and probes again
// after 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures:         3,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 1,
	}
}

func (p *Populator) newBreaker(config BreakerConfig) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "filemeta",
		MaxRequests: config.HalfOpenMaxRequests,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.MaxFailures
		},
		// missing or undecodable files are answers, not storage failures
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, simplecms.ErrObjectNotFound) || errors.Is(err, image.ErrFormat)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.logger.Warn("storage circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
}

// call runs fn through the breaker when one is configured.
func (p *Populator) call(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.breaker == nil {
		return fn()
	}

	result, err := p.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCircuitOpen
	}
	return result, err
}
