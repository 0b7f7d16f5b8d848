package http

import (
	"errors"
	"net/http"

	"quizverse-service/internal/domain"
)

// ErrUnauthenticated is returned when a request carries no usable identity.
var ErrUnauthenticated = errors.New("authentication required")

// Authenticator resolves the caller's identity for each request or rejects
// it. Credential storage and token verification live behind this boundary.
type Authenticator interface {
	Authenticate(r *http.Request) (domain.Identity, error)
}

// HeaderAuthenticator trusts identity headers set by a fronting gateway that
// has already verified the caller's token.
type HeaderAuthenticator struct{}

func (HeaderAuthenticator) Authenticate(r *http.Request) (domain.Identity, error) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		return domain.Identity{}, ErrUnauthenticated
	}
	role := domain.Role(r.Header.Get("X-User-Role"))
	if role == "" {
		role = domain.RoleStudent
	}
	return domain.Identity{
		UserID:      userID,
		Role:        role,
		DisplayName: r.Header.Get("X-User-Name"),
	}, nil
}
