package auth

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Authorize runs the offline paste-code OAuth flow: it prints the consent
// URL, reads the authorization code from input, exchanges it, and writes
// the credential file. This is the only interactive entry point; the
// pipeline itself never prompts.
func Authorize(ctx context.Context, clientSecretsPath, credentialsPath string, in io.Reader, out io.Writer) error {
	data, err := os.ReadFile(clientSecretsPath)
	if err != nil {
		return fmt.Errorf("read client secrets %s: %w", clientSecretsPath, err)
	}

	conf, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return fmt.Errorf("parse client secrets: %w", err)
	}
	if conf.RedirectURL == "" {
		conf.RedirectURL = "urn:ietf:wg:oauth:2.0:oob"
	}

	url := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Open the following URL in a browser and paste the authorization code:\n\n%s\n\nCode: ", url)

	reader := bufio.NewReader(in)
	code, err := reader.ReadString('\n')
	if err != nil && code == "" {
		return fmt.Errorf("read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("empty authorization code")
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}

	cred := &Credential{
		Token:        tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenURI:     conf.Endpoint.TokenURL,
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
		Scopes:       Scopes,
		Expiry:       tok.Expiry,
	}
	if err := saveCredential(credentialsPath, cred); err != nil {
		return err
	}

	fmt.Fprintf(out, "Credentials saved to %s\n", credentialsPath)
	return nil
}
