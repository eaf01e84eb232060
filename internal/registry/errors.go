package registry

import (
	apperrors "github.com/allisson/warden/internal/errors"
)

// Registry errors. All of them are wiring mistakes made by the composition root.
var (
	// ErrUnboundCapability indicates no binding exists for the requested token.
	ErrUnboundCapability = apperrors.Wrap(apperrors.ErrMisconfigured, "unbound capability")

	// ErrCyclicDependency indicates a token was requested again while it was still being resolved.
	ErrCyclicDependency = apperrors.Wrap(apperrors.ErrMisconfigured, "cyclic dependency")

	// ErrInvalidBinding indicates a nil factory or an unknown lifecycle was passed to Bind.
	ErrInvalidBinding = apperrors.Wrap(apperrors.ErrMisconfigured, "invalid binding")

	// ErrCapabilityTypeMismatch indicates the resolved instance does not have the requested type.
	ErrCapabilityTypeMismatch = apperrors.Wrap(apperrors.ErrMisconfigured, "capability type mismatch")
)
