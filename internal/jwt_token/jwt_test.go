package jwttoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "isleport/pkg/domain"
	dErrors "isleport/pkg/domain-errors"
)

func testActor() id.Actor {
	return id.Actor{
		UserID:    id.UserID(uuid.New()),
		Role:      id.RoleAdmin,
		Verified:  id.StatusVerified,
		RegionIDs: []id.RegionID{id.RegionID(uuid.New())},
	}
}

func TestRoundTrip(t *testing.T) {
	svc := NewJWTService("test-key", "isleport", "isleport-api")
	actor := testActor()

	token, err := svc.GenerateActorToken(actor, time.Hour)
	require.NoError(t, err)

	got, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor.UserID, got.UserID)
	assert.Equal(t, id.RoleAdmin, got.Role)
	assert.Equal(t, id.StatusVerified, got.Verified)
	assert.Equal(t, actor.RegionIDs, got.RegionIDs)
	assert.Empty(t, got.IslandIDs)
}

func TestExpiredToken(t *testing.T) {
	svc := NewJWTService("test-key", "isleport", "isleport-api")

	token, err := svc.GenerateActorToken(testActor(), -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestWrongKey(t *testing.T) {
	issuer := NewJWTService("key-a", "isleport", "isleport-api")
	verifier := NewJWTService("key-b", "isleport", "isleport-api")

	token, err := issuer.GenerateActorToken(testActor(), time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestGarbageToken(t *testing.T) {
	svc := NewJWTService("test-key", "isleport", "isleport-api")

	_, err := svc.ValidateToken("not-a-jwt")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
