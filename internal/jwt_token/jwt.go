package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "isleport/pkg/domain"
	dErrors "isleport/pkg/domain-errors"
)

// Claims carries the authenticated actor's identity and org memberships.
// The auth service that issues these tokens is an external collaborator;
// the portal only validates and consumes them.
type Claims struct {
	Role      string   `json:"role"`
	Verified  string   `json:"verified_status"`
	RegionIDs []string `json:"region_ids,omitempty"`
	IslandIDs []string `json:"island_ids,omitempty"`
	jwt.RegisteredClaims
}

// JWTService validates actor tokens. It can also mint tokens for tests
// and local development.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// GenerateActorToken mints a signed token for the given actor.
func (s *JWTService) GenerateActorToken(actor id.Actor, expiresIn time.Duration) (string, error) {
	regionIDs := make([]string, 0, len(actor.RegionIDs))
	for _, regionID := range actor.RegionIDs {
		regionIDs = append(regionIDs, regionID.String())
	}
	islandIDs := make([]string, 0, len(actor.IslandIDs))
	for _, islandID := range actor.IslandIDs {
		islandIDs = append(islandIDs, islandID.String())
	}

	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:      string(actor.Role),
		Verified:  string(actor.Verified),
		RegionIDs: regionIDs,
		IslandIDs: islandIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	return newToken.SignedString(s.signingKey)
}

// ValidateToken parses and validates a token, returning the actor it
// describes. Membership IDs that fail to parse invalidate the token; a
// partially-parsed actor would silently shrink or widen visibility.
func (s *JWTService) ValidateToken(tokenString string) (id.Actor, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return id.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return id.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return id.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return id.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	userID, err := id.ParseUserID(claims.Subject)
	if err != nil {
		return id.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "invalid subject claim")
	}

	actor := id.Actor{
		UserID:   userID,
		Role:     id.Role(claims.Role),
		Verified: id.VerifiedStatus(claims.Verified),
	}
	for _, raw := range claims.RegionIDs {
		regionID, err := id.ParseRegionID(raw)
		if err != nil {
			return id.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "invalid region claim")
		}
		actor.RegionIDs = append(actor.RegionIDs, regionID)
	}
	for _, raw := range claims.IslandIDs {
		islandID, err := id.ParseIslandID(raw)
		if err != nil {
			return id.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "invalid island claim")
		}
		actor.IslandIDs = append(actor.IslandIDs, islandID)
	}
	return actor, nil
}
