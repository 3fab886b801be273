package token

import (
	id "skillaudit/pkg/domain"
)

// MiddlewareAdapter presents the token service through the verifier
// interface the auth middleware expects.
type MiddlewareAdapter struct {
	tokens *Service
}

func NewMiddlewareAdapter(tokens *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{tokens: tokens}
}

func (a *MiddlewareAdapter) VerifyAccess(tokenString string) (id.UserID, string, error) {
	claims, err := a.tokens.Validate(tokenString)
	if err != nil {
		return id.UserID{}, "", err
	}
	userID, role, err := a.tokens.Identity(claims)
	if err != nil {
		return id.UserID{}, "", err
	}
	return userID, string(role), nil
}
