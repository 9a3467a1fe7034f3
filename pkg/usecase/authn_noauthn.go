package usecase

import (
	"context"

	"github.com/partnerflow/partnerflow/pkg/domain/model"
)

// NoAuthnSubject is the principal subject used when authentication is disabled
const NoAuthnSubject = "anonymous"

// NoAuthnUseCase accepts every request (for development/testing)
type NoAuthnUseCase struct{}

// NewNoAuthnUseCase creates a new NoAuthnUseCase instance
func NewNoAuthnUseCase() *NoAuthnUseCase {
	return &NoAuthnUseCase{}
}

// Authenticate always returns the anonymous principal
func (uc *NoAuthnUseCase) Authenticate(ctx context.Context, token string) (*model.Principal, error) {
	return &model.Principal{Subject: NoAuthnSubject, Name: "Anonymous"}, nil
}

// IsNoAuthn returns true for NoAuthnUseCase
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
