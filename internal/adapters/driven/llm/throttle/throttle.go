// Package throttle limits the rate of calls made to an LLM service.
package throttle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultCooldown is how long calls are held back after the provider
// reports a rate limit.
const DefaultCooldown = 20 * time.Second

// LLMService wraps another LLMService with a token bucket. Every inference
// call waits for a token; Ping and ModelName are not throttled. After the
// provider answers with domain.ErrRateLimited, calls wait out a cooldown.
type LLMService struct {
	next     driven.LLMService
	bucket   *rate.Limiter
	cooldown time.Duration
	now      func() time.Time

	mu           sync.Mutex
	blockedUntil time.Time
}

// New wraps next so at most perMinute inference calls start per minute,
// with bursts of up to burst calls. A non-positive perMinute returns next
// unchanged.
func New(next driven.LLMService, perMinute, burst int) driven.LLMService {
	if next == nil || perMinute <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	every := time.Minute / time.Duration(perMinute)
	return &LLMService{
		next:     next,
		bucket:   rate.NewLimiter(rate.Every(every), burst),
		cooldown: DefaultCooldown,
		now:      time.Now,
	}
}

// SetCooldown changes the pause applied after a rate-limit response.
func (s *LLMService) SetCooldown(d time.Duration) {
	s.cooldown = d
}

func (s *LLMService) wait(ctx context.Context) error {
	s.mu.Lock()
	until := s.blockedUntil
	s.mu.Unlock()

	if d := until.Sub(s.now()); d > 0 {
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < d {
			return fmt.Errorf("%w: cooling down for %s", domain.ErrRateLimited, d.Round(time.Second))
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if err := s.bucket.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	}
	return nil
}

// observe starts a cooldown when err reports a provider rate limit.
func (s *LLMService) observe(err error) {
	if err == nil || !errors.Is(err, domain.ErrRateLimited) {
		return
	}
	s.mu.Lock()
	s.blockedUntil = s.now().Add(s.cooldown)
	s.mu.Unlock()
}

// Generate waits for a token, then delegates.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	out, err := s.next.Generate(ctx, prompt, opts)
	s.observe(err)
	return out, err
}

// GenerateStructured waits for a token, then delegates.
func (s *LLMService) GenerateStructured(
	ctx context.Context,
	prompt string,
	schema driven.ResponseSchema,
	opts driven.GenerateOptions,
) ([]byte, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	out, err := s.next.GenerateStructured(ctx, prompt, schema, opts)
	s.observe(err)
	return out, err
}

// Transcribe waits for a token, then delegates.
func (s *LLMService) Transcribe(
	ctx context.Context,
	image driven.Image,
	prompt string,
	opts driven.GenerateOptions,
) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	out, err := s.next.Transcribe(ctx, image, prompt, opts)
	s.observe(err)
	return out, err
}

// ModelName returns the wrapped service's model.
func (s *LLMService) ModelName() string {
	return s.next.ModelName()
}

// Ping delegates without consuming a token.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close closes the wrapped service.
func (s *LLMService) Close() error {
	return s.next.Close()
}

// Unwrap returns the wrapped service.
func (s *LLMService) Unwrap() driven.LLMService {
	return s.next
}
