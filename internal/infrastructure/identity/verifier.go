// Package identity verifies bearer credentials and extracts the caller identity.
package identity

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/delang-zeta/ai-gateway/internal/domain/models"
	"github.com/delang-zeta/ai-gateway/internal/domain/service"
	"github.com/delang-zeta/ai-gateway/pkg/errors"
	"github.com/delang-zeta/ai-gateway/pkg/logger"
)

const bearerPrefix = "Bearer "

// Verifier implements service.IdentityVerifier over HMAC-signed JWTs.
// The signing key comes from the secret source on every verification;
// the source is expected to cache it.
type Verifier struct {
	secrets service.SecretSource
	logger  logger.Logger
}

// NewVerifier creates a credential verifier backed by the given secret source.
func NewVerifier(secrets service.SecretSource, log logger.Logger) *Verifier {
	return &Verifier{
		secrets: secrets,
		logger:  log.WithComponent("identity"),
	}
}

// Verify parses and verifies the Authorization header value. The error
// taxonomy distinguishes an absent credential, a malformed one, an expired
// token and a tampered token, so callers can map each to the right status.
func (v *Verifier) Verify(ctx context.Context, authorization string) (models.Identity, errors.GovError) {
	if authorization == "" {
		return models.Identity{}, errors.ErrMissingCredential()
	}
	if !strings.HasPrefix(authorization, bearerPrefix) {
		return models.Identity{}, errors.ErrMalformedCredential("authorization scheme is not Bearer")
	}

	raw := strings.TrimSpace(strings.TrimPrefix(authorization, bearerPrefix))
	if raw == "" {
		return models.Identity{}, errors.ErrMalformedCredential("bearer token is empty")
	}

	key, err := v.secrets.SigningKey(ctx)
	if err != nil {
		v.logger.Error(ctx, "signing key unavailable", err)
		return models.Identity{}, errors.ErrVerificationUnavailable(err)
	}

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return key, nil
	})
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return models.Identity{}, errors.ErrExpiredCredential()
		}
		return models.Identity{}, errors.ErrInvalidCredential(err.Error())
	}

	identity := identityFromClaims(claims)
	if identity.Anonymous() {
		// Without a userId every such token would share one rate window
		// and one daily budget, so the credential is unusable here.
		return models.Identity{}, errors.ErrInvalidCredential("token carries no userId claim")
	}
	return identity, nil
}

// identityFromClaims extracts the caller identity from the verified claims.
func identityFromClaims(claims jwt.MapClaims) models.Identity {
	identity := models.Identity{}
	if userID, ok := claims["userId"].(string); ok {
		identity.UserID = userID
	}
	if address, ok := claims["address"].(string); ok {
		identity.Address = address
	}
	return identity
}
