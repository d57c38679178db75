package cryptoutils

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/pkcs12"
)

// ParseCertificatePEM parses the first CERTIFICATE block found in a PEM
// document. Preceding non-certificate blocks are skipped.
func ParseCertificatePEM(certPEM []byte) (*x509.Certificate, error) {
	rest := certPEM
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return nil, errors.New("no certificate PEM block found")
		}
		if block.Type != "CERTIFICATE" {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse certificate: %w", err)
		}
		return cert, nil
	}
}

// ParsePrivateKeyPEM parses a PEM-encoded private key. PKCS#8, PKCS#1 (RSA)
// and SEC 1 (EC) encodings are accepted. Only RSA and ECDSA keys are
// returned; other key types cannot sign client assertions.
func ParsePrivateKeyPEM(keyPEM []byte) (crypto.Signer, error) {
	rest := keyPEM
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return nil, errors.New("no private key PEM block found")
		}

		switch block.Type {
		case "PRIVATE KEY":
			parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("failed to parse PKCS#8 private key: %w", err)
			}
			return signerFromKey(parsed)
		case "RSA PRIVATE KEY":
			parsed, err := x509.ParsePKCS1PrivateKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("failed to parse PKCS#1 private key: %w", err)
			}
			return parsed, nil
		case "EC PRIVATE KEY":
			parsed, err := x509.ParseECPrivateKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("failed to parse EC private key: %w", err)
			}
			return parsed, nil
		default:
			continue
		}
	}
}

func signerFromKey(key any) (crypto.Signer, error) {
	switch typed := key.(type) {
	case *rsa.PrivateKey:
		return typed, nil
	case *ecdsa.PrivateKey:
		return typed, nil
	default:
		return nil, fmt.Errorf("unsupported private key type %T", key)
	}
}

// ParseBundlePEM parses a PEM document holding one certificate and one
// private key in either order, as commonly exported by certificate tooling.
func ParseBundlePEM(bundle []byte) (*x509.Certificate, crypto.Signer, error) {
	cert, err := ParseCertificatePEM(bundle)
	if err != nil {
		return nil, nil, err
	}

	key, err := ParsePrivateKeyPEM(bundle)
	if err != nil {
		return nil, nil, err
	}

	if !KeyMatchesCertificate(cert, key) {
		return nil, nil, errors.New("private key does not match certificate")
	}
	return cert, key, nil
}

// ParsePKCS12 decodes a password-protected PKCS#12 bundle (.pfx/.p12) into
// its leaf certificate and private key.
func ParsePKCS12(data []byte, password string) (*x509.Certificate, crypto.Signer, error) {
	key, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode PKCS#12 bundle: %w", err)
	}

	signer, err := signerFromKey(key)
	if err != nil {
		return nil, nil, err
	}

	if !KeyMatchesCertificate(cert, signer) {
		return nil, nil, errors.New("private key does not match certificate")
	}
	return cert, signer, nil
}

// KeyMatchesCertificate reports whether the private key corresponds to the
// certificate's public key.
func KeyMatchesCertificate(cert *x509.Certificate, key crypto.Signer) bool {
	if cert == nil || key == nil {
		return false
	}

	switch certKey := cert.PublicKey.(type) {
	case *ecdsa.PublicKey:
		keyPub, ok := key.Public().(*ecdsa.PublicKey)
		if !ok {
			return false
		}
		return certKey.Curve == keyPub.Curve &&
			certKey.X.Cmp(keyPub.X) == 0 &&
			certKey.Y.Cmp(keyPub.Y) == 0
	case *rsa.PublicKey:
		keyPub, ok := key.Public().(*rsa.PublicKey)
		if !ok {
			return false
		}
		return certKey.N.Cmp(keyPub.N) == 0 && certKey.E == keyPub.E
	default:
		return false
	}
}

// GenerateCertificate creates a self-signed certificate with a fresh ECDSA
// P-256 key, returning PEM-encoded certificate and private key. Intended for
// tests and local setups where chain of trust does not matter.
func GenerateCertificate(cn string) ([]byte, []byte, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return selfSign(cn, privateKey)
}

// GenerateRSACertificate creates a self-signed certificate with a fresh RSA
// 2048-bit key, returning PEM-encoded certificate and private key.
func GenerateRSACertificate(cn string) ([]byte, []byte, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, err
	}
	return selfSign(cn, privateKey)
}

func selfSign(cn string, privateKey crypto.Signer) ([]byte, []byte, error) {
	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		return nil, nil, err
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName: cn,
		},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, privateKey.Public(), privateKey)
	if err != nil {
		return nil, nil, err
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})

	keyBytes, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return nil, nil, err
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyBytes})

	return certPEM, keyPEM, nil
}
