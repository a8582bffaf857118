package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// DatabaseCredentials is the credential bundle handed out by the secrets
// store. It is consumed exactly once, when the connection pool is built.
type DatabaseCredentials struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Name     string `json:"dbname"`
	User     string `json:"username"`
	Password string `json:"password"`
}

// Provider fetches a credential bundle by an opaque reference.
type Provider interface {
	DatabaseCredentials(ctx context.Context, ref string) (DatabaseCredentials, error)
}

// FileProvider reads credential bundles from mounted secret files. The
// reference is the path of a JSON file containing the bundle.
type FileProvider struct{}

var _ Provider = (*FileProvider)(nil)

func NewFileProvider() *FileProvider {
	return &FileProvider{}
}

func (p *FileProvider) DatabaseCredentials(_ context.Context, ref string) (DatabaseCredentials, error) {
	data, err := os.ReadFile(ref)
	if err != nil {
		return DatabaseCredentials{}, fmt.Errorf("reading credentials file: %w", err)
	}

	var creds DatabaseCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return DatabaseCredentials{}, fmt.Errorf("parsing credentials file: %w", err)
	}

	if creds.Host == "" || creds.User == "" {
		return DatabaseCredentials{}, fmt.Errorf("credentials file %s is missing host or username", ref)
	}

	return creds, nil
}
