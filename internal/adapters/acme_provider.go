// Package adapters holds optional, pluggable integrations that sit outside
// the Forward-WebSocket core: certificate acquisition today, potentially
// others later.
package adapters

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"

	"github.com/go-acme/lego/v4/certificate"
	"github.com/go-acme/lego/v4/challenge/http01"
	"github.com/go-acme/lego/v4/lego"
	"github.com/go-acme/lego/v4/registration"
)

// acmeUser is the minimal lego.User implementation: one ephemeral account
// key per process, re-registered on every run (SPEC_FULL.md item 4, no
// persisted account state).
type acmeUser struct {
	email string
	reg   *registration.Resource
	key   crypto.PrivateKey
}

func (u *acmeUser) GetEmail() string                        { return u.email }
func (u *acmeUser) GetRegistration() *registration.Resource { return u.reg }
func (u *acmeUser) GetPrivateKey() crypto.PrivateKey        { return u.key }

// ACMEProvider obtains a certificate for the Forward-WebSocket listener's
// hostname via HTTP-01, using lego's standalone challenge server rather
// than writing to a shared webroot: it binds port 80 itself for the
// duration of the challenge and releases it immediately after.
type ACMEProvider struct {
	logger   *slog.Logger
	caDir    string
	httpPort string
}

// NewACMEProvider builds an ACMEProvider. caDirURL selects the ACME
// directory (production or a staging URL for testing); httpAddr is the
// address the standalone HTTP-01 listener binds ("", ":80" bind-all).
func NewACMEProvider(logger *slog.Logger, caDirURL, httpAddr string) *ACMEProvider {
	return &ACMEProvider{logger: logger, caDir: caDirURL, httpPort: httpAddr}
}

// Obtain runs the full account-registration-plus-HTTP-01-challenge flow
// for domainName and returns the issued certificate and key, PEM-encoded.
// It is called once, synchronously, before the Forward-WebSocket listener
// binds (spec §4.8 Start, SPEC_FULL.md item 4).
func (p *ACMEProvider) Obtain(email, domainName string) (*certificate.Resource, error) {
	p.logger.Info("starting ACME certificate provisioning", slog.String("domain", domainName))

	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("adapters: generate ACME account key: %w", err)
	}
	user := &acmeUser{email: email, key: privateKey}

	cfg := lego.NewConfig(user)
	cfg.CADirURL = p.caDir

	client, err := lego.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("adapters: create ACME client: %w", err)
	}

	iface, port := "", p.httpPort
	if p.httpPort != "" {
		iface, port, err = net.SplitHostPort(p.httpPort)
		if err != nil {
			return nil, fmt.Errorf("adapters: parse HTTP-01 listener address %q: %w", p.httpPort, err)
		}
	}
	if err := client.Challenge.SetHTTP01Provider(http01.NewProviderServer(iface, port)); err != nil {
		return nil, fmt.Errorf("adapters: set HTTP-01 provider: %w", err)
	}

	reg, err := client.Registration.Register(registration.RegisterOptions{TermsOfServiceAgreed: true})
	if err != nil {
		return nil, fmt.Errorf("adapters: register ACME account: %w", err)
	}
	user.reg = reg

	cert, err := client.Certificate.Obtain(certificate.ObtainRequest{
		Domains: []string{domainName},
		Bundle:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("adapters: obtain certificate for %s: %w", domainName, err)
	}

	p.logger.Info("certificate issued", slog.String("domain", domainName))
	return cert, nil
}

// TLSConfig builds a *tls.Config serving the certificate resource returned
// by Obtain, for the Forward-WebSocket listener to upgrade from ws:// to
// wss:// (SPEC_FULL.md item 4).
func TLSConfig(cert *certificate.Resource) (*tls.Config, error) {
	pair, err := tls.X509KeyPair(cert.Certificate, cert.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("adapters: parse issued certificate: %w", err)
	}
	return &tls.Config{Certificates: []tls.Certificate{pair}}, nil
}
