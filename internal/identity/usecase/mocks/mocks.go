// Package mocks provides mock implementations of the identity usecase interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	identityDomain "github.com/allisson/warden/internal/identity/domain"
)

// MockIdentityProvider is a mock implementation of IdentityProvider.
type MockIdentityProvider struct {
	mock.Mock
	ProviderName string
}

// NewMockIdentityProvider creates a MockIdentityProvider whose expectations are asserted on cleanup.
func NewMockIdentityProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockIdentityProvider {
	m := &MockIdentityProvider{ProviderName: "mock"}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Name returns ProviderName.
func (m *MockIdentityProvider) Name() string {
	return m.ProviderName
}

// Verify mocks the Verify method of IdentityProvider.
func (m *MockIdentityProvider) Verify(ctx context.Context, credential string) (*identityDomain.Claims, error) {
	args := m.Called(ctx, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Claims), args.Error(1)
}

// GetBySubject mocks the GetBySubject method of IdentityProvider.
func (m *MockIdentityProvider) GetBySubject(ctx context.Context, subject string) (*identityDomain.Profile, error) {
	args := m.Called(ctx, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Profile), args.Error(1)
}

// MockPrincipalRepository is a mock implementation of PrincipalRepository.
type MockPrincipalRepository struct {
	mock.Mock
}

// NewMockPrincipalRepository creates a MockPrincipalRepository whose expectations are asserted on cleanup.
func NewMockPrincipalRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPrincipalRepository {
	m := &MockPrincipalRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create mocks the Create method of PrincipalRepository.
func (m *MockPrincipalRepository) Create(ctx context.Context, profile *identityDomain.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// GetBySubject mocks the GetBySubject method of PrincipalRepository.
func (m *MockPrincipalRepository) GetBySubject(ctx context.Context, subject string) (*identityDomain.Profile, error) {
	args := m.Called(ctx, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Profile), args.Error(1)
}

// MockPrincipalVerifier is a mock implementation of PrincipalVerifier.
type MockPrincipalVerifier struct {
	mock.Mock
}

// NewMockPrincipalVerifier creates a MockPrincipalVerifier whose expectations are asserted on cleanup.
func NewMockPrincipalVerifier(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPrincipalVerifier {
	m := &MockPrincipalVerifier{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// VerifyCredential mocks the VerifyCredential method of PrincipalVerifier.
func (m *MockPrincipalVerifier) VerifyCredential(
	ctx context.Context,
	credential string,
) (*identityDomain.Principal, error) {
	args := m.Called(ctx, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Principal), args.Error(1)
}

// GetPrincipal mocks the GetPrincipal method of PrincipalVerifier.
func (m *MockPrincipalVerifier) GetPrincipal(ctx context.Context, subject string) (*identityDomain.Principal, error) {
	args := m.Called(ctx, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Principal), args.Error(1)
}

// MockProfileUseCase is a mock implementation of ProfileUseCase.
type MockProfileUseCase struct {
	mock.Mock
}

// NewMockProfileUseCase creates a MockProfileUseCase whose expectations are asserted on cleanup.
func NewMockProfileUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockProfileUseCase {
	m := &MockProfileUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create mocks the Create method of ProfileUseCase.
func (m *MockProfileUseCase) Create(
	ctx context.Context,
	input *identityDomain.CreateProfileInput,
) (*identityDomain.Profile, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Profile), args.Error(1)
}
