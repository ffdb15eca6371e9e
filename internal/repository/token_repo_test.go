package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisTokenDenylist_Revoke(t *testing.T) {
	client, mock := redismock.NewClientMock()
	denylist := NewRedisTokenDenylist(client)

	mock.ExpectSet("revoked_token:abc", "1", 30*time.Minute).SetVal("OK")

	require.NoError(t, denylist.Revoke(context.Background(), "abc", 30*time.Minute))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisTokenDenylist_Revoke_AlreadyExpired(t *testing.T) {
	client, mock := redismock.NewClientMock()
	denylist := NewRedisTokenDenylist(client)

	require.NoError(t, denylist.Revoke(context.Background(), "abc", 0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisTokenDenylist_Revoke_Error(t *testing.T) {
	client, mock := redismock.NewClientMock()
	denylist := NewRedisTokenDenylist(client)

	mock.ExpectSet("revoked_token:abc", "1", time.Minute).SetErr(errors.New("READONLY"))

	assert.Error(t, denylist.Revoke(context.Background(), "abc", time.Minute))
}

func TestRedisTokenDenylist_IsRevoked(t *testing.T) {
	client, mock := redismock.NewClientMock()
	denylist := NewRedisTokenDenylist(client)

	mock.ExpectExists("revoked_token:abc").SetVal(1)
	mock.ExpectExists("revoked_token:def").SetVal(0)

	revoked, err := denylist.IsRevoked(context.Background(), "abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = denylist.IsRevoked(context.Background(), "def")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.NoError(t, mock.ExpectationsWereMet())
}
