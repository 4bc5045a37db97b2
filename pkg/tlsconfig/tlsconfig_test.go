package tlsconfig

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeSelfSigned writes a self-signed certificate and its key, usable as its own CA.
func writeSelfSigned(t *testing.T, dir string) (certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "sensorice-test"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		DNSNames:              []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}

	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	if err := os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600); err != nil {
		t.Fatal(err)
	}
	return certFile, keyFile
}

func TestLoadServerTLS(t *testing.T) {
	cert, key := writeSelfSigned(t, t.TempDir())

	cfg, err := LoadServerTLS(cert, key, cert)
	if err != nil {
		t.Fatalf("LoadServerTLS failed: %v", err)
	}
	if cfg.ClientAuth != tls.RequireAndVerifyClientCert || cfg.ClientCAs == nil {
		t.Error("expected mTLS with a client CA pool")
	}

	cfg, err = LoadServerTLS(cert, key, "")
	if err != nil {
		t.Fatalf("LoadServerTLS without CA failed: %v", err)
	}
	if cfg.ClientAuth != tls.NoClientCert {
		t.Error("expected no client auth without a CA")
	}
}

func TestLoadClientTLS(t *testing.T) {
	cert, key := writeSelfSigned(t, t.TempDir())

	cfg, err := LoadClientTLS("", "", cert)
	if err != nil {
		t.Fatalf("LoadClientTLS CA only failed: %v", err)
	}
	if cfg.RootCAs == nil || len(cfg.Certificates) != 0 {
		t.Error("expected root CAs and no client certificate")
	}

	cfg, err = LoadClientTLS(cert, key, cert)
	if err != nil {
		t.Fatalf("LoadClientTLS failed: %v", err)
	}
	if len(cfg.Certificates) != 1 {
		t.Error("expected a client certificate")
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "bogus.pem")
	if err := os.WriteFile(bogus, []byte("not a certificate"), 0o600); err != nil {
		t.Fatal(err)
	}
	cert, key := writeSelfSigned(t, dir)

	if _, err := LoadServerTLS(filepath.Join(dir, "missing.pem"), key, ""); err == nil {
		t.Error("expected error for missing certificate")
	}
	if _, err := LoadServerTLS(cert, key, bogus); err == nil {
		t.Error("expected error for unparsable CA")
	}
	if _, err := LoadClientTLS("", "", filepath.Join(dir, "missing.pem")); err == nil {
		t.Error("expected error for missing CA")
	}
}
