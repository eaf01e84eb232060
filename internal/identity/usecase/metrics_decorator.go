package usecase

import (
	"context"
	"time"

	identityDomain "github.com/allisson/warden/internal/identity/domain"
	"github.com/allisson/warden/internal/metrics"
)

// principalVerifierWithMetrics decorates PrincipalVerifier with metrics instrumentation.
type principalVerifierWithMetrics struct {
	next    PrincipalVerifier
	metrics metrics.BusinessMetrics
}

// NewPrincipalVerifierWithMetrics wraps a PrincipalVerifier with metrics recording.
func NewPrincipalVerifierWithMetrics(verifier PrincipalVerifier, m metrics.BusinessMetrics) PrincipalVerifier {
	return &principalVerifierWithMetrics{
		next:    verifier,
		metrics: m,
	}
}

// VerifyCredential records metrics for credential verification.
func (p *principalVerifierWithMetrics) VerifyCredential(
	ctx context.Context,
	credential string,
) (*identityDomain.Principal, error) {
	start := time.Now()
	principal, err := p.next.VerifyCredential(ctx, credential)

	status := metrics.StatusFor(err)

	p.metrics.RecordOperation(ctx, "identity", "credential_verify", status)
	p.metrics.RecordDuration(ctx, "identity", "credential_verify", time.Since(start), status)

	return principal, err
}

// GetPrincipal records metrics for principal lookups.
func (p *principalVerifierWithMetrics) GetPrincipal(
	ctx context.Context,
	subject string,
) (*identityDomain.Principal, error) {
	start := time.Now()
	principal, err := p.next.GetPrincipal(ctx, subject)

	status := metrics.StatusFor(err)

	p.metrics.RecordOperation(ctx, "identity", "principal_get", status)
	p.metrics.RecordDuration(ctx, "identity", "principal_get", time.Since(start), status)

	return principal, err
}
