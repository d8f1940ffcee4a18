package signing_test

import (
	"crypto/rsa"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/goalkeeper/internal/adapters/signing"
	"go.trai.ch/goalkeeper/internal/core/domain"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := signing.GenerateKey(2048)
	require.NoError(t, err)
	return key
}

func testGoal() domain.Goal {
	return domain.Goal{
		GoalSetID:   "gs-1",
		UniqueName:  "build",
		Environment: "0-code",
		Name:        "build",
		Version:     3,
		Timestamp:   time.UnixMilli(1700000000000),
		State:       domain.StateRequested,
		Fulfillment: domain.Fulfillment{Method: domain.MethodManaged, Name: "build"},
		PreConditions: []domain.GoalKey{
			{UniqueName: "lint"},
			{GoalSetID: "gs-0", UniqueName: "plan"},
		},
		ExternalURLs: []domain.ExternalURL{
			{Label: "preview", URL: "https://preview.example.com/abc123"},
		},
		Registration: "goalkeeper",
		Repo:         domain.Repo{Owner: "acme", Name: "web"},
		SHA:          "abc123",
		Provenance: []domain.Provenance{
			{Registration: "planner", Version: "1.0.0", CorrelationID: "c-1", Timestamp: time.UnixMilli(1700000000000)},
		},
	}
}

func TestCanonical_Deterministic(t *testing.T) {
	g := testGoal()

	a, err := signing.Canonical(g)
	require.NoError(t, err)
	b, err := signing.Canonical(g.Clone())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	g.Signature = "ignored"
	g.SignerKeyID = "ignored"
	c, err := signing.Canonical(g)
	require.NoError(t, err)
	assert.Equal(t, a, c)

	g.Description = "changed"
	d, err := signing.Canonical(g)
	require.NoError(t, err)
	assert.NotEqual(t, a, d)
}

func TestKeyring_SignVerify(t *testing.T) {
	key := testKey(t)
	kr := signing.NewKeyring(key)

	signed, err := kr.Sign(testGoal())
	require.NoError(t, err)
	assert.NotEmpty(t, signed.Signature)
	assert.Equal(t, signing.KeyID(&key.PublicKey), signed.SignerKeyID)

	id, err := kr.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, signed.SignerKeyID, id)
}

func TestKeyring_Rotation(t *testing.T) {
	oldKey := testKey(t)
	newKey := testKey(t)

	signedOld, err := signing.NewKeyring(oldKey).Sign(testGoal())
	require.NoError(t, err)

	verifier := signing.NewKeyring(newKey, signing.PublicKey{
		ID:  signing.KeyID(&oldKey.PublicKey),
		Key: &oldKey.PublicKey,
	})

	id, err := verifier.Verify(signedOld)
	require.NoError(t, err)
	assert.Equal(t, signing.KeyID(&oldKey.PublicKey), id)
}

func TestKeyring_VerifyFailures(t *testing.T) {
	key := testKey(t)
	signed, err := signing.NewKeyring(key).Sign(testGoal())
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		_, err := signing.NewKeyring(testKey(t)).Verify(signed)
		require.ErrorContains(t, err, domain.ErrSignatureInvalid.Error())
	})

	t.Run("tampered field", func(t *testing.T) {
		tampered := signed.Clone()
		tampered.State = domain.StateSuccess
		_, err := signing.NewKeyring(key).Verify(tampered)
		require.ErrorContains(t, err, domain.ErrSignatureInvalid.Error())
	})

	t.Run("tampered precondition goal set", func(t *testing.T) {
		tampered := signed.Clone()
		tampered.PreConditions[1].GoalSetID = ""
		_, err := signing.NewKeyring(key).Verify(tampered)
		require.ErrorContains(t, err, domain.ErrSignatureInvalid.Error())
	})

	t.Run("tampered external url", func(t *testing.T) {
		tampered := signed.Clone()
		tampered.ExternalURLs[0].URL = "https://evil.example.com"
		_, err := signing.NewKeyring(key).Verify(tampered)
		require.ErrorContains(t, err, domain.ErrSignatureInvalid.Error())
	})

	t.Run("tampered signature", func(t *testing.T) {
		tampered := signed.Clone()
		raw := []byte(tampered.Signature)
		if raw[0] == 'A' {
			raw[0] = 'B'
		} else {
			raw[0] = 'A'
		}
		tampered.Signature = string(raw)
		_, err := signing.NewKeyring(key).Verify(tampered)
		require.ErrorContains(t, err, domain.ErrSignatureInvalid.Error())
	})

	t.Run("missing signature", func(t *testing.T) {
		_, err := signing.NewKeyring(key).Verify(testGoal())
		require.ErrorContains(t, err, domain.ErrSignatureMissing.Error())
	})

	t.Run("no trusted keys", func(t *testing.T) {
		_, err := signing.NewKeyring(nil).Verify(signed)
		require.ErrorContains(t, err, domain.ErrNoTrustedKeys.Error())
	})
}

func TestKeyring_NoPrivateKeyLeavesGoalUnsigned(t *testing.T) {
	kr := signing.NewKeyring(nil)
	assert.False(t, kr.CanSign())

	g, err := kr.Sign(testGoal())
	require.NoError(t, err)
	assert.Empty(t, g.Signature)
}

func TestSaveAndLoadKeyPair(t *testing.T) {
	dir := t.TempDir()
	key := testKey(t)

	privPath, pubPath, err := signing.SaveKeyPair(dir, key)
	require.NoError(t, err)

	info, err := os.Stat(privPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(domain.PrivateFilePerm), info.Mode().Perm())

	kr, err := signing.FromConfig(domain.SigningConfig{
		PrivateKey:  privPath,
		TrustedKeys: []string{pubPath},
	})
	require.NoError(t, err)

	signed, err := kr.Sign(testGoal())
	require.NoError(t, err)
	_, err = kr.Verify(signed)
	require.NoError(t, err)
}

func TestParsePublicKeyPEM_Errors(t *testing.T) {
	_, err := signing.ParsePublicKeyPEM([]byte("not pem"))
	require.ErrorIs(t, err, domain.ErrKeyDecodeFailed)

	_, err = signing.LoadPublicKeys([]string{filepath.Join(t.TempDir(), "missing.pub")})
	require.Error(t, err)
}
