package signing

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"os"
	"path/filepath"

	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/zerr"
)

// DefaultKeyBits is the modulus size of generated keys.
const DefaultKeyBits = 3072

// PublicKey is a trusted verification key and its id.
type PublicKey struct {
	ID  string
	Key *rsa.PublicKey
}

// GenerateKey creates a new RSA private key.
func GenerateKey(bits int) (*rsa.PrivateKey, error) {
	if bits <= 0 {
		bits = DefaultKeyBits
	}
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to generate RSA key")
	}
	return key, nil
}

// KeyID derives a short stable id from the PKIX encoding of a public key.
func KeyID(pub *rsa.PublicKey) string {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:8])
}

// EncodePrivateKeyPEM encodes key as a PKCS#8 PEM block.
func EncodePrivateKeyPEM(key *rsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode private key")
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// EncodePublicKeyPEM encodes pub as a PKIX PEM block.
func EncodePublicKeyPEM(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode public key")
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

// ParsePrivateKeyPEM decodes a PKCS#1 or PKCS#8 RSA private key.
func ParsePrivateKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, domain.ErrKeyDecodeFailed
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, zerr.Wrap(err, domain.ErrKeyDecodeFailed.Error())
		}
		return key, nil
	default:
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, zerr.Wrap(err, domain.ErrKeyDecodeFailed.Error())
		}
		key, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, domain.ErrUnsupportedKey
		}
		return key, nil
	}
}

// ParsePublicKeyPEM decodes a PKIX or PKCS#1 RSA public key. A private key
// PEM is accepted too and yields its public half.
func ParsePublicKeyPEM(data []byte) (PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return PublicKey{}, domain.ErrKeyDecodeFailed
	}

	var pub *rsa.PublicKey
	switch block.Type {
	case "RSA PUBLIC KEY":
		key, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return PublicKey{}, zerr.Wrap(err, domain.ErrKeyDecodeFailed.Error())
		}
		pub = key
	case "PRIVATE KEY", "RSA PRIVATE KEY":
		key, err := ParsePrivateKeyPEM(data)
		if err != nil {
			return PublicKey{}, err
		}
		pub = &key.PublicKey
	default:
		parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return PublicKey{}, zerr.Wrap(err, domain.ErrKeyDecodeFailed.Error())
		}
		key, ok := parsed.(*rsa.PublicKey)
		if !ok {
			return PublicKey{}, domain.ErrUnsupportedKey
		}
		pub = key
	}

	return PublicKey{ID: KeyID(pub), Key: pub}, nil
}

// LoadPrivateKey reads a PEM private key file.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	//nolint:gosec // path is operator-provided configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read private key"), "path", path)
	}
	key, err := ParsePrivateKeyPEM(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return key, nil
}

// LoadPublicKeys reads every PEM public key file in paths.
func LoadPublicKeys(paths []string) ([]PublicKey, error) {
	keys := make([]PublicKey, 0, len(paths))
	for _, path := range paths {
		//nolint:gosec // path is operator-provided configuration
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to read public key"), "path", path)
		}
		key, err := ParsePublicKeyPEM(data)
		if err != nil {
			return nil, zerr.With(err, "path", path)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// SaveKeyPair writes key to dir as goalkeeper.key (0600) and goalkeeper.pub (0644).
// It returns both paths.
func SaveKeyPair(dir string, key *rsa.PrivateKey) (string, string, error) {
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return "", "", zerr.Wrap(err, "failed to create key directory")
	}

	privPEM, err := EncodePrivateKeyPEM(key)
	if err != nil {
		return "", "", err
	}
	pubPEM, err := EncodePublicKeyPEM(&key.PublicKey)
	if err != nil {
		return "", "", err
	}

	privPath := filepath.Join(dir, domain.PrivateKeyFileName)
	if err := os.WriteFile(privPath, privPEM, domain.PrivateFilePerm); err != nil {
		return "", "", zerr.Wrap(err, "failed to write private key")
	}
	pubPath := filepath.Join(dir, domain.PublicKeyFileName)
	//nolint:gosec // public keys are meant to be readable
	if err := os.WriteFile(pubPath, pubPEM, domain.FilePerm); err != nil {
		return "", "", zerr.Wrap(err, "failed to write public key")
	}
	return privPath, pubPath, nil
}
