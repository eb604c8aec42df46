package github

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	gogithub "github.com/google/go-github/v60/github"
)

// Auth holds the credentials for talking to the GitHub API. All fields are
// optional: with a Token the client authenticates with a personal access
// token, with App credentials it authenticates as a GitHub App installation,
// and with neither it falls back to anonymous access (public endpoints only,
// at the anonymous rate limit).
type Auth struct {
	Token          string
	AppID          int64
	InstallationID int64
	PrivateKey     []byte
	PrivateKeyPath string
}

// NewClient creates a GitHub API client for the given credentials.
func NewClient(auth Auth) (*gogithub.Client, error) {
	if auth.AppID != 0 {
		return newAppClient(auth)
	}
	if auth.Token != "" {
		return gogithub.NewClient(nil).WithAuthToken(auth.Token), nil
	}
	return gogithub.NewClient(nil), nil
}

// newAppClient authenticates as a GitHub App installation. ghinstallation
// manages the JWT and installation token lifecycle.
func newAppClient(auth Auth) (*gogithub.Client, error) {
	key, err := resolvePrivateKey(auth.PrivateKey, auth.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("resolving private key: %w", err)
	}

	transport, err := ghinstallation.New(http.DefaultTransport, auth.AppID, auth.InstallationID, key)
	if err != nil {
		return nil, fmt.Errorf("creating installation transport: %w", err)
	}

	return gogithub.NewClient(&http.Client{Transport: transport}), nil
}

// resolvePrivateKey returns PEM-encoded private key bytes from either the
// provided raw/base64-encoded key or by reading from a file path.
func resolvePrivateKey(key []byte, keyPath string) ([]byte, error) {
	if len(key) > 0 {
		s := strings.TrimSpace(string(key))
		if strings.HasPrefix(s, "-----BEGIN") {
			return []byte(s), nil
		}
		// Try base64 decode
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			decoded, err = base64.URLEncoding.DecodeString(s)
			if err != nil {
				return nil, fmt.Errorf("private key is neither PEM nor valid base64: %w", err)
			}
		}
		return decoded, nil
	}

	if keyPath != "" {
		data, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("reading private key file %s: %w", keyPath, err)
		}
		return data, nil
	}

	return nil, fmt.Errorf("no private key provided: set private_key or private_key_path")
}
