package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	identityDomain "github.com/allisson/warden/internal/identity/domain"
)

// BreakerConfig configures the circuit breaker guarding provider calls.
type BreakerConfig struct {
	MaxRequests         uint32        // Requests allowed through while half-open
	Interval            time.Duration // Period after which closed-state counts are cleared (0 keeps them)
	Timeout             time.Duration // Time spent open before probing again
	ConsecutiveFailures uint32        // Consecutive unavailability failures that open the breaker
	CallTimeout         time.Duration // Deadline applied to each provider call (0 disables it)
}

// DefaultBreakerConfig returns the breaker settings used when nothing is configured.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:         1,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// principalVerifier implements PrincipalVerifier on top of a single IdentityProvider.
type principalVerifier struct {
	provider    IdentityProvider
	breaker     *gobreaker.CircuitBreaker
	callTimeout time.Duration
	logger      *slog.Logger
}

// NewPrincipalVerifier creates a PrincipalVerifier delegating to provider. Provider calls run
// through a circuit breaker that only counts unavailability as failure.
func NewPrincipalVerifier(provider IdentityProvider, cfg BreakerConfig, logger *slog.Logger) PrincipalVerifier {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = DefaultBreakerConfig().ConsecutiveFailures
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "identity-provider-" + provider.Name(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("identity provider circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
		IsSuccessful: isProviderHealthy,
	})

	return &principalVerifier{
		provider:    provider,
		breaker:     breaker,
		callTimeout: cfg.CallTimeout,
		logger:      logger,
	}
}

// VerifyCredential verifies the credential with the provider.
func (v *principalVerifier) VerifyCredential(
	ctx context.Context,
	credential string,
) (*identityDomain.Principal, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, identityDomain.ErrInvalidCredential
	}

	result, err := v.breaker.Execute(func() (any, error) {
		callCtx, cancel := v.callContext(ctx)
		defer cancel()
		return v.provider.Verify(callCtx, credential)
	})
	if err != nil {
		return nil, v.translate(ctx, "verify", err, identityDomain.ErrInvalidCredential)
	}

	claims, ok := result.(*identityDomain.Claims)
	if !ok || claims == nil || strings.TrimSpace(claims.Subject) == "" {
		v.logger.DebugContext(ctx, "identity provider returned claims without subject",
			slog.String("provider", v.provider.Name()),
		)
		return nil, identityDomain.ErrInvalidCredential
	}

	return identityDomain.NewPrincipalFromClaims(v.provider.Name(), claims), nil
}

// GetPrincipal looks up the subject with the provider.
func (v *principalVerifier) GetPrincipal(ctx context.Context, subject string) (*identityDomain.Principal, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, identityDomain.ErrInvalidSubject
	}

	result, err := v.breaker.Execute(func() (any, error) {
		callCtx, cancel := v.callContext(ctx)
		defer cancel()
		return v.provider.GetBySubject(callCtx, subject)
	})
	if err != nil {
		return nil, v.translate(ctx, "lookup", err, identityDomain.ErrPrincipalNotFound)
	}

	profile, ok := result.(*identityDomain.Profile)
	if !ok || profile == nil {
		return nil, identityDomain.ErrPrincipalNotFound
	}

	principal := identityDomain.NewPrincipalFromProfile(v.provider.Name(), profile)
	if principal.Subject == "" {
		principal.Subject = subject
	}
	return principal, nil
}

func (v *principalVerifier) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if v.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, v.callTimeout)
}

// translate maps a provider failure onto the identity errors. unknownSubject is returned
// when the provider does not know the subject.
func (v *principalVerifier) translate(ctx context.Context, operation string, err error, unknownSubject error) error {
	switch {
	case errors.Is(err, identityDomain.ErrCredentialRejected):
		v.logger.DebugContext(ctx, "identity provider rejected request",
			slog.String("provider", v.provider.Name()),
			slog.String("operation", operation),
			slog.Any("error", err),
		)
		return identityDomain.ErrInvalidCredential
	case errors.Is(err, identityDomain.ErrSubjectUnknown):
		v.logger.DebugContext(ctx, "identity provider does not know subject",
			slog.String("provider", v.provider.Name()),
			slog.String("operation", operation),
		)
		return unknownSubject
	default:
		v.logger.WarnContext(ctx, "identity provider unavailable",
			slog.String("provider", v.provider.Name()),
			slog.String("operation", operation),
			slog.Any("error", err),
		)
		return identityDomain.ErrIdentityProviderUnavailable
	}
}

// isProviderHealthy reports whether a provider call counts as a breaker success. Only
// unavailability counts against the provider; rejections and caller cancellation do not.
func isProviderHealthy(err error) bool {
	return err == nil ||
		errors.Is(err, identityDomain.ErrCredentialRejected) ||
		errors.Is(err, identityDomain.ErrSubjectUnknown) ||
		errors.Is(err, context.Canceled)
}
