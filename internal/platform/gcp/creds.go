package gcp

import (
	"strings"

	"google.golang.org/api/option"
)

// clientOptions prefers inline JSON credentials over a key file path; with
// neither set the client falls back to application default credentials.
func clientOptions(cfg ObjectStorageConfig) []option.ClientOption {
	creds := cfg.CredentialsJSON
	if creds == "" {
		creds = cfg.CredentialsFile
	}
	creds = strings.TrimSpace(creds)
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}
