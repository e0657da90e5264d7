package leanx

import (
	"strings"

	"github.com/Naim3097/BOOX/internal/domain"
)

// Where a resolved collection identifier came from.
const (
	SourceExplicit  = "explicit"
	SourceAuthToken = "auth_token"
)

const collectionIDLength = 36

// CredentialResolver picks the collection identifier sent with each bill.
//
// The order is fixed: an explicitly configured identifier wins; otherwise
// the middle segment of the "{merchant}|{uuid}|{signature}" auth token is
// used when it has the canonical 36-character form; anything else is a
// configuration error. Candidates are never probed against the live API.
type CredentialResolver struct {
	authToken      string
	collectionUUID string
}

type Collection struct {
	UUID   string
	Source string
}

func NewCredentialResolver(authToken, collectionUUID string) *CredentialResolver {
	return &CredentialResolver{
		authToken:      strings.TrimSpace(authToken),
		collectionUUID: strings.TrimSpace(collectionUUID),
	}
}

// AuthToken returns the merchant token or a ConfigError when it is unset.
func (r *CredentialResolver) AuthToken() (string, error) {
	if r.authToken == "" {
		return "", &domain.ConfigError{Message: "gateway auth token is not set"}
	}
	return r.authToken, nil
}

func (r *CredentialResolver) Resolve() (Collection, error) {
	if r.collectionUUID != "" {
		return Collection{UUID: r.collectionUUID, Source: SourceExplicit}, nil
	}
	if r.authToken == "" {
		return Collection{}, &domain.ConfigError{Message: "gateway auth token is not set and no collection uuid is configured"}
	}

	parts := strings.Split(r.authToken, "|")
	if len(parts) != 3 {
		return Collection{}, &domain.ConfigError{Message: "auth token is not a merchant|uuid|signature triple"}
	}
	candidate := strings.TrimSpace(parts[1])
	if len(candidate) != collectionIDLength {
		return Collection{}, &domain.ConfigError{Message: "auth token uuid segment has unexpected length"}
	}
	return Collection{UUID: candidate, Source: SourceAuthToken}, nil
}
