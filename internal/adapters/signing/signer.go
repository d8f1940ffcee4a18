package signing

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha512"
	"encoding/base64"

	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
	"go.trai.ch/zerr"
)

// Sign returns an RSA PKCS#1 v1.5 signature over the SHA-512 digest of data.
func Sign(data []byte, key *rsa.PrivateKey) ([]byte, error) {
	digest := sha512.Sum512(data)
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA512, digest[:])
	if err != nil {
		return nil, zerr.Wrap(err, "failed to sign goal")
	}
	return sig, nil
}

// Verify checks sig against every trusted key and returns the id of the first match.
func Verify(data, sig []byte, trusted []PublicKey) (string, error) {
	if len(trusted) == 0 {
		return "", domain.ErrNoTrustedKeys
	}
	digest := sha512.Sum512(data)
	for _, k := range trusted {
		if rsa.VerifyPKCS1v15(k.Key, crypto.SHA512, digest[:], sig) == nil {
			return k.ID, nil
		}
	}
	return "", domain.ErrSignatureInvalid
}

// Keyring signs goals with one private key and verifies them against a set
// of trusted public keys. Several trusted keys allow rotation.
type Keyring struct {
	private *rsa.PrivateKey
	keyID   string
	trusted []PublicKey
}

var (
	_ ports.GoalSigner   = (*Keyring)(nil)
	_ ports.GoalVerifier = (*Keyring)(nil)
)

// NewKeyring creates a Keyring. A nil private key makes Sign a no-op.
// The public half of the private key is always trusted.
func NewKeyring(private *rsa.PrivateKey, trusted ...PublicKey) *Keyring {
	k := &Keyring{private: private}
	if private != nil {
		k.keyID = KeyID(&private.PublicKey)
		k.trusted = append(k.trusted, PublicKey{ID: k.keyID, Key: &private.PublicKey})
	}
	for _, t := range trusted {
		if t.ID == k.keyID && k.keyID != "" {
			continue
		}
		k.trusted = append(k.trusted, t)
	}
	return k
}

// CanSign reports whether a private key is loaded.
func (k *Keyring) CanSign() bool {
	return k.private != nil
}

// Sign returns a copy of goal carrying a signature over its canonical bytes.
func (k *Keyring) Sign(goal domain.Goal) (domain.Goal, error) {
	if k.private == nil {
		return goal, nil
	}

	data, err := Canonical(goal)
	if err != nil {
		return domain.Goal{}, err
	}
	sig, err := Sign(data, k.private)
	if err != nil {
		return domain.Goal{}, zerr.With(err, "goal", goal.ID())
	}

	signed := goal.Clone()
	signed.Signature = base64.StdEncoding.EncodeToString(sig)
	signed.SignerKeyID = k.keyID
	return signed, nil
}

// Verify checks the goal signature and returns the id of the verifying key.
func (k *Keyring) Verify(goal domain.Goal) (string, error) {
	if goal.Signature == "" {
		return "", zerr.With(domain.ErrSignatureMissing, "goal", goal.ID())
	}
	sig, err := base64.StdEncoding.DecodeString(goal.Signature)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrSignatureInvalid.Error()), "goal", goal.ID())
	}
	data, err := Canonical(goal)
	if err != nil {
		return "", err
	}
	id, err := Verify(data, sig, k.trusted)
	if err != nil {
		return "", zerr.With(err, "goal", goal.ID())
	}
	return id, nil
}
