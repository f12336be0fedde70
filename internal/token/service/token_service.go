package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/venuekit/credentials/internal/metrics"
	tokenDomain "github.com/venuekit/credentials/internal/token/domain"
)

// DefaultTokenTTL is the token lifetime used when SignOptions carries none.
const DefaultTokenTTL = time.Hour

// temporal claims stripped before re-signing during a key refresh.
var temporalClaims = []string{"iat", "exp", "nbf", "jti"}

// TokenService issues and verifies HS256 JWTs keyed by the rotation service,
// bound to a single secret name at construction.
type TokenService struct {
	rotator    Rotator
	secretName string
	issuer     string
	defaultTTL time.Duration
	logger     *slog.Logger
	metrics    metrics.CredentialMetrics
	parser     *jwt.Parser
	now        func() time.Time
}

// TokenOption configures the token service.
type TokenOption func(*TokenService)

// WithIssuer sets the "iss" claim on issued tokens.
func WithIssuer(issuer string) TokenOption {
	return func(s *TokenService) { s.issuer = issuer }
}

// WithDefaultTTL overrides the default token lifetime.
func WithDefaultTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) { s.defaultTTL = ttl }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.CredentialMetrics) TokenOption {
	return func(s *TokenService) { s.metrics = m }
}

// NewTokenService creates a token service bound to secretName. The rotation
// service must have the name initialized before Sign or Verify is called.
func NewTokenService(rotator Rotator, secretName string, logger *slog.Logger, opts ...TokenOption) *TokenService {
	s := &TokenService{
		rotator:    rotator,
		secretName: secretName,
		defaultTTL: DefaultTokenTTL,
		logger:     logger,
		metrics:    metrics.NewNoopMetrics(),
		parser:     jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TokenService) checkInitialized() error {
	if s.rotator == nil || s.secretName == "" {
		return tokenDomain.ErrNotInitialized
	}
	return nil
}

// Sign issues a token over the caller's claims, layering standard temporal
// claims on top and embedding the primary key version id in the "kid" header.
func (s *TokenService) Sign(claims jwt.MapClaims, opts SignOptions) (SignedToken, error) {
	if err := s.checkInitialized(); err != nil {
		return SignedToken{}, err
	}

	key, err := s.rotator.PrimarySecret(s.secretName)
	if err != nil {
		return SignedToken{}, err
	}
	versionID, err := s.rotator.PrimaryVersionID(s.secretName)
	if err != nil {
		return SignedToken{}, err
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := s.now()
	merged := jwt.MapClaims{}
	for k, v := range claims {
		merged[k] = v
	}
	merged["iat"] = jwt.NewNumericDate(now)
	merged["exp"] = jwt.NewNumericDate(now.Add(ttl))
	if s.issuer != "" {
		merged["iss"] = s.issuer
	}
	if opts.Subject != "" {
		merged["sub"] = opts.Subject
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, merged)
	token.Header["kid"] = versionID

	signed, err := token.SignedString([]byte(key))
	if err != nil {
		s.metrics.RecordOperation(context.Background(), "token", "sign", "error")
		return SignedToken{}, fmt.Errorf("failed to sign token: %w", err)
	}

	s.metrics.RecordOperation(context.Background(), "token", "sign", "success")
	return SignedToken{Token: signed, KeyVersion: versionID}, nil
}

// Verify checks a token's signature and temporal claims.
//
// The header is decoded without signature verification first to read the key
// identifier. A resolvable kid pins verification to exactly that key; its
// failure is a hard failure, never an invitation to brute-force other keys.
// An absent or unresolvable kid falls back to trying every currently valid
// version, newest first — a deliberate rotation-compatibility tradeoff over
// failing closed.
func (s *TokenService) Verify(tokenString string) (VerifiedToken, error) {
	if err := s.checkInitialized(); err != nil {
		return VerifiedToken{}, err
	}

	kid, err := s.peekKeyID(tokenString)
	if err != nil {
		s.metrics.RecordOperation(context.Background(), "token", "verify", "error")
		return VerifiedToken{}, err
	}

	primaryID, err := s.rotator.PrimaryVersionID(s.secretName)
	if err != nil {
		return VerifiedToken{}, err
	}

	if kid != "" {
		if key, lookupErr := s.rotator.SecretByVersion(s.secretName, kid); lookupErr == nil {
			claims, verifyErr := s.verifyWithKey(tokenString, key)
			if verifyErr != nil {
				s.metrics.RecordOperation(context.Background(), "token", "verify", "error")
				return VerifiedToken{}, fmt.Errorf("%w: %v", tokenDomain.ErrTokenVerificationFailed, verifyErr)
			}
			s.metrics.RecordOperation(context.Background(), "token", "verify", "success")
			return VerifiedToken{
				Claims:     claims,
				KeyVersion: kid,
				IsOldKey:   kid != primaryID,
			}, nil
		}
		// fall through: unknown or expired kid, try all valid versions
	}

	candidates, err := s.rotator.ValidSecrets(s.secretName)
	if err != nil {
		return VerifiedToken{}, err
	}

	var lastErr error
	for _, candidate := range candidates {
		claims, verifyErr := s.verifyWithKey(tokenString, candidate.Key)
		if verifyErr != nil {
			lastErr = verifyErr
			continue
		}
		s.metrics.RecordOperation(context.Background(), "token", "verify", "success")
		return VerifiedToken{
			Claims:     claims,
			KeyVersion: candidate.VersionID,
			IsOldKey:   candidate.VersionID != primaryID,
		}, nil
	}

	s.metrics.RecordOperation(context.Background(), "token", "verify", "error")
	if lastErr != nil {
		return VerifiedToken{}, fmt.Errorf("%w: %v", tokenDomain.ErrTokenVerificationFailed, lastErr)
	}
	return VerifiedToken{}, tokenDomain.ErrTokenVerificationFailed
}

// peekKeyID decodes the token header without verifying the signature and
// returns the kid claim, if any. Undecodable structure fails with
// ErrInvalidTokenFormat before any key lookup.
func (s *TokenService) peekKeyID(tokenString string) (string, error) {
	unverified, _, err := s.parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", tokenDomain.ErrInvalidTokenFormat, err)
	}

	kid, _ := unverified.Header["kid"].(string)
	return kid, nil
}

// verifyWithKey parses and validates the token against a single key.
func (s *TokenService) verifyWithKey(tokenString, key string) (jwt.MapClaims, error) {
	token, err := s.parser.ParseWithClaims(tokenString, jwt.MapClaims{}, func(*jwt.Token) (any, error) {
		return []byte(key), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, tokenDomain.ErrTokenVerificationFailed
	}
	return claims, nil
}

// Rotate rotates the bound secret. An empty newValue generates a fresh random
// value (zero-touch rotation, ephemeral to the process).
func (s *TokenService) Rotate(newValue string) (string, error) {
	if err := s.checkInitialized(); err != nil {
		return "", err
	}

	if newValue == "" {
		return s.rotator.RotateAuto(s.secretName)
	}
	return s.rotator.Rotate(s.secretName, newValue)
}

// ForceInvalidateOldTokens immediately expires every non-primary key version.
// Every token not signed by the current primary stops verifying.
func (s *TokenService) ForceInvalidateOldTokens() error {
	if err := s.checkInitialized(); err != nil {
		return err
	}
	return s.rotator.ForceExpireOldVersions(s.secretName)
}

// IsTokenUsingOldKey reports whether a token was signed by a non-primary key
// version. Best effort for UX hints only: any failure yields false, never an
// error. Do not use for security decisions.
func (s *TokenService) IsTokenUsingOldKey(tokenString string) bool {
	verified, err := s.Verify(tokenString)
	if err != nil {
		return false
	}
	return verified.IsOldKey
}

// RefreshTokenKey re-signs a token under the current primary key.
//
// Returns (nil, nil) when the token already uses the primary key or when
// verification fails: this is a convenience operation with a safe no-op
// fallback, not a verification surface. Temporal claims are stripped before
// re-signing so the new token gets a fresh lifetime.
func (s *TokenService) RefreshTokenKey(tokenString string, opts SignOptions) (*SignedToken, error) {
	verified, err := s.Verify(tokenString)
	if err != nil {
		return nil, nil
	}
	if !verified.IsOldKey {
		return nil, nil
	}

	claims := jwt.MapClaims{}
	for k, v := range verified.Claims {
		claims[k] = v
	}
	for _, claim := range temporalClaims {
		delete(claims, claim)
	}

	refreshed, err := s.Sign(claims, opts)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("token re-signed under primary key",
		slog.String("secret", s.secretName),
		slog.String("old_version", verified.KeyVersion),
		slog.String("new_version", refreshed.KeyVersion),
	)
	return &refreshed, nil
}
