package multisig

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"

	"btcsign-sdk/testutil"
)

func genPublicKeys(t *testing.T, n int) []*btcec.PublicKey {
	t.Helper()

	keys := make([]*btcec.PublicKey, n)
	for i := range keys {
		publicKey, _, err := testutil.GenKeyPair()
		require.NoError(t, err)
		keys[i] = publicKey
	}
	return keys
}

// TestBuilderNoQuorum asserts that building without a quorum fails no
// matter how many keys were added.
func TestBuilderNoQuorum(t *testing.T) {
	t.Parallel()

	_, err := BuilderWithQuorum(0).ToScript()
	require.ErrorIs(t, err, ErrNoQuorum)

	_, err = NewRedeemScriptBuilder().
		AddPublicKey(genPublicKeys(t, 1)[0]).
		ToScript()
	require.ErrorIs(t, err, ErrNoQuorum)
}

// TestBuilderNotEnoughKeys asserts that a quorum alone is not enough to
// build a script.
func TestBuilderNotEnoughKeys(t *testing.T) {
	t.Parallel()

	_, err := BuilderWithQuorum(3).ToScript()
	require.ErrorIs(t, err, ErrNotEnoughPublicKeys)
}

// TestBuilderIncorrectQuorum asserts that a quorum larger than the key
// count is rejected.
func TestBuilderIncorrectQuorum(t *testing.T) {
	t.Parallel()

	_, err := BuilderWithPublicKeys(genPublicKeys(t, 2)).
		SetQuorum(3).
		ToScript()
	require.ErrorIs(t, err, ErrIncorrectQuorum)
}

// TestBuilderDefaultQuorum asserts that preloading keys defaults the
// quorum to the full key count.
func TestBuilderDefaultQuorum(t *testing.T) {
	t.Parallel()

	keys := genPublicKeys(t, 3)
	script, err := BuilderWithPublicKeys(keys).ToScript()
	require.NoError(t, err)
	require.Equal(t, 3, script.Content().Quorum)
}
