// Package oauth implements the bridge to the Google identity provider: it
// builds the authorization URL, exchanges authorization codes for provider
// tokens and verifies the returned identity token against the configured
// client id.  The bridge knows nothing about users or storage; the social
// login handler owns that orchestration.
package oauth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"

	"github.com/iliyamo/service-marketplace/internal/config"
)

// Bridge failures.  Handlers translate these into 400 responses.
var (
	// ErrProvider wraps a non-2xx token endpoint response or a provider
	// reported "error" field.
	ErrProvider = errors.New("error requesting tokens from provider")
	// ErrMissingIDToken is returned when the token response carries no
	// identity token.
	ErrMissingIDToken = errors.New("id token not provided")
	// ErrInvalidIDToken is returned when the identity token fails signature
	// or audience validation.
	ErrInvalidIDToken = errors.New("invalid provider token")
)

// Identity is the subset of verified id_token claims the application needs
// to find or create a user.
type Identity struct {
	Email      string // verified email address
	Subject    string // the provider's stable user id ("sub" claim)
	GivenName  string // optional first name
	FamilyName string // optional last name
}

// GoogleBridge drives the authorization-code flow against Google.  The
// validate field exists so tests can replace the network-bound id_token
// verification.
type GoogleBridge struct {
	conf     *oauth2.Config
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

// NewGoogleBridge builds a bridge from the loaded configuration.  Endpoints
// come from the config so tests can point the flow at a local server.
func NewGoogleBridge(cfg config.GoogleConfig) *GoogleBridge {
	return &GoogleBridge{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{cfg.Scope},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthEndpoint,
				TokenURL: cfg.TokenURL,
			},
		},
		clientID: cfg.ClientID,
		validate: idtoken.Validate,
	}
}

// AuthURL returns the provider authorization URL the client is redirected
// to.  The account-selection hint forces the chooser even when a single
// Google session exists.
func (b *GoogleBridge) AuthURL(state string) string {
	return b.conf.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange posts the authorization code to the provider's token endpoint and
// returns the raw id_token string.  A failed exchange yields ErrProvider; a
// successful exchange without an id_token yields ErrMissingIDToken.
func (b *GoogleBridge) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := b.conf.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	idTok, ok := tok.Extra("id_token").(string)
	if !ok || idTok == "" {
		return "", ErrMissingIDToken
	}
	return idTok, nil
}

// VerifyIDToken validates the identity token's signature and audience
// against the configured client id and extracts the claims the login flow
// needs.  Any validation failure is reported as ErrInvalidIDToken.
func (b *GoogleBridge) VerifyIDToken(ctx context.Context, idTok string) (Identity, error) {
	payload, err := b.validate(ctx, idTok, b.clientID)
	if err != nil {
		return Identity{}, ErrInvalidIDToken
	}
	id := Identity{Subject: payload.Subject}
	if v, ok := payload.Claims["email"].(string); ok {
		id.Email = v
	}
	if v, ok := payload.Claims["given_name"].(string); ok {
		id.GivenName = v
	}
	if v, ok := payload.Claims["family_name"].(string); ok {
		id.FamilyName = v
	}
	if id.Email == "" {
		return Identity{}, ErrInvalidIDToken
	}
	return id, nil
}
