package certs

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"time"
)

var ErrCertificateExpired = errors.New("certificate expired")

// CertManager loads the server's TLS key pair.
type CertManager struct {
	certFile string
	keyFile  string
	now      func() time.Time
}

// NewCertManager creates a CertManager for a PEM certificate and key file.
func NewCertManager(certFile, keyFile string) *CertManager {
	return &CertManager{certFile: certFile, keyFile: keyFile, now: time.Now}
}

// Load reads the key pair and refuses a certificate that has expired.
func (cm *CertManager) Load() (tls.Certificate, error) {
	pair, err := tls.LoadX509KeyPair(cm.certFile, cm.keyFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("load key pair: %w", err)
	}
	if pair.Leaf == nil {
		leaf, err := x509.ParseCertificate(pair.Certificate[0])
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("parse certificate: %w", err)
		}
		pair.Leaf = leaf
	}
	if cm.IsExpired(pair.Leaf) {
		return tls.Certificate{}, fmt.Errorf("%s: %w on %s", cm.certFile, ErrCertificateExpired, pair.Leaf.NotAfter.Format(time.RFC3339))
	}
	return pair, nil
}

// IsExpired checks if a certificate is expired.
func (cm *CertManager) IsExpired(cert *x509.Certificate) bool {
	return cert.NotAfter.Before(cm.now())
}

// ExpiresIn is the time left before cert expires.
func (cm *CertManager) ExpiresIn(cert *x509.Certificate) time.Duration {
	return cert.NotAfter.Sub(cm.now())
}

// TLSConfig returns a server config serving the loaded pair.
func (cm *CertManager) TLSConfig() (*tls.Config, *x509.Certificate, error) {
	pair, err := cm.Load()
	if err != nil {
		return nil, nil, err
	}
	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{pair},
	}, pair.Leaf, nil
}
