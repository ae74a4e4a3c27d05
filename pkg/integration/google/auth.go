package google

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// NewHTTPClient creates an authenticated HTTP client from a service account JSON key file.
// A non-empty subject makes the service account act for that user, which
// Gmail requires.
func NewHTTPClient(ctx context.Context, credentialsFile, subject string, scopes ...string) (*http.Client, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	conf, err := google.JWTConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	conf.Subject = subject

	return conf.Client(ctx), nil
}

// ClientOption returns an option.ClientOption for use with Google API service
// constructors. With a subject it goes through NewHTTPClient.
func ClientOption(ctx context.Context, credentialsFile, subject string, scopes ...string) (option.ClientOption, error) {
	if subject == "" {
		return option.WithCredentialsFile(credentialsFile), nil
	}
	client, err := NewHTTPClient(ctx, credentialsFile, subject, scopes...)
	if err != nil {
		return nil, err
	}
	return option.WithHTTPClient(client), nil
}
