package credentials_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pickmart/pickmart-go/internal/apperrors"
	"github.com/pickmart/pickmart-go/internal/credentials"
	"github.com/pickmart/pickmart-go/internal/testutil"
)

func Test_RedisStore(t *testing.T) {
	t.Parallel()

	rdb := testutil.StartMiniredis(t)
	testStoreContract(t, credentials.NewRedisStore(rdb, "pickmart:credentials:test"))
}

func Test_RedisStore_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	rdb := testutil.StartMiniredis(t)
	alice := credentials.NewRedisStore(rdb, "pickmart:credentials:alice")
	bob := credentials.NewRedisStore(rdb, "pickmart:credentials:bob")

	require.NoError(t, alice.Save(t.Context(), sampleCredential()))

	_, err := bob.Load(t.Context())
	require.ErrorIs(t, err, apperrors.ErrNoCredential, "sessions under different keys must not leak into each other")

	require.NoError(t, bob.Clear(t.Context()))
	got, err := alice.Load(t.Context())
	require.NoError(t, err)
	require.Equal(t, "access-token", got.AccessToken)
}
