package gcp

import (
	"fmt"
	"net/url"
	"strings"
)

type ObjectStorageMode string

const (
	ObjectStorageModeGCS         ObjectStorageMode = "gcs"
	ObjectStorageModeGCSEmulator ObjectStorageMode = "gcs_emulator"
)

// StorageSettings is the raw, unvalidated storage section of the app config.
type StorageSettings struct {
	Mode            string
	EmulatorHost    string
	PublicBaseURL   string
	ProductsBucket  string
	ProductsCDN     string
	LegacyBucket    string
	LegacyCDN       string
	CredentialsJSON string
	CredentialsFile string
}

type ObjectStorageConfig struct {
	Mode                  ObjectStorageMode
	EmulatorHost          string
	CompatibilityFallback bool
	PublicBaseURL         string

	Products BucketSettings
	Legacy   BucketSettings

	CredentialsJSON string
	CredentialsFile string
}

type BucketSettings struct {
	Name      string
	CDNDomain string
}

func IsSupportedObjectStorageMode(mode ObjectStorageMode) bool {
	switch mode {
	case ObjectStorageModeGCS, ObjectStorageModeGCSEmulator:
		return true
	default:
		return false
	}
}

func (cfg ObjectStorageConfig) IsEmulatorMode() bool {
	return cfg.Mode == ObjectStorageModeGCSEmulator
}

func (cfg ObjectStorageConfig) ModeSource() string {
	if cfg.CompatibilityFallback {
		return "compatibility_fallback"
	}
	return "explicit_or_default"
}

type ObjectStorageConfigErrorCode string

const (
	ObjectStorageConfigErrorInvalidMode          ObjectStorageConfigErrorCode = "invalid_mode"
	ObjectStorageConfigErrorMissingEmulatorHost  ObjectStorageConfigErrorCode = "missing_emulator_host"
	ObjectStorageConfigErrorInvalidEmulatorHost  ObjectStorageConfigErrorCode = "invalid_emulator_host"
	ObjectStorageConfigErrorMissingBucket        ObjectStorageConfigErrorCode = "missing_bucket"
	ObjectStorageConfigErrorInvalidPublicBaseURL ObjectStorageConfigErrorCode = "invalid_public_base_url"
)

type ObjectStorageConfigError struct {
	Code  ObjectStorageConfigErrorCode
	Value string
	Cause error
}

func (e *ObjectStorageConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case ObjectStorageConfigErrorInvalidMode:
		return fmt.Sprintf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q)", e.Value, ObjectStorageModeGCS, ObjectStorageModeGCSEmulator)
	case ObjectStorageConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST to be set", ObjectStorageModeGCSEmulator)
	case ObjectStorageConfigErrorInvalidEmulatorHost:
		return fmt.Sprintf("invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", e.Value)
	case ObjectStorageConfigErrorMissingBucket:
		return fmt.Sprintf("missing bucket name for %s", e.Value)
	case ObjectStorageConfigErrorInvalidPublicBaseURL:
		return fmt.Sprintf("invalid OBJECT_STORAGE_PUBLIC_BASE_URL=%q; expected absolute URL like http://localhost:4443", e.Value)
	default:
		return "invalid object storage config"
	}
}

func (e *ObjectStorageConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ResolveObjectStorageConfig normalizes raw settings into a validated config.
// An empty mode with an emulator host set falls back to emulator mode.
func ResolveObjectStorageConfig(in StorageSettings) (ObjectStorageConfig, error) {
	cfg := ObjectStorageConfig{
		EmulatorHost:    strings.TrimRight(strings.TrimSpace(in.EmulatorHost), "/"),
		PublicBaseURL:   strings.TrimRight(strings.TrimSpace(in.PublicBaseURL), "/"),
		Products:        BucketSettings{Name: strings.TrimSpace(in.ProductsBucket), CDNDomain: strings.TrimSpace(in.ProductsCDN)},
		Legacy:          BucketSettings{Name: strings.TrimSpace(in.LegacyBucket), CDNDomain: strings.TrimSpace(in.LegacyCDN)},
		CredentialsJSON: strings.TrimSpace(in.CredentialsJSON),
		CredentialsFile: strings.TrimSpace(in.CredentialsFile),
	}

	rawMode := strings.TrimSpace(in.Mode)
	switch mode := ObjectStorageMode(strings.ToLower(rawMode)); mode {
	case "":
		if cfg.EmulatorHost != "" {
			cfg.Mode = ObjectStorageModeGCSEmulator
			cfg.CompatibilityFallback = true
		} else {
			cfg.Mode = ObjectStorageModeGCS
		}
	case ObjectStorageModeGCS, ObjectStorageModeGCSEmulator:
		cfg.Mode = mode
	default:
		return cfg, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Value: rawMode}
	}

	if cfg.PublicBaseURL == "" && cfg.IsEmulatorMode() {
		cfg.PublicBaseURL = cfg.EmulatorHost
	}

	if err := ValidateObjectStorageConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func ValidateObjectStorageConfig(cfg ObjectStorageConfig) error {
	if !IsSupportedObjectStorageMode(cfg.Mode) {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Value: string(cfg.Mode)}
	}
	if cfg.Products.Name == "" {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingBucket, Value: string(BucketCategoryProducts)}
	}
	if cfg.Legacy.Name == "" {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingBucket, Value: string(BucketCategoryLegacy)}
	}
	// The emulator host doubles as the default public base, so it is checked first.
	if cfg.IsEmulatorMode() {
		if cfg.EmulatorHost == "" {
			return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingEmulatorHost}
		}
		if !isAbsoluteURL(cfg.EmulatorHost) {
			_, err := url.Parse(cfg.EmulatorHost)
			return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidEmulatorHost, Value: cfg.EmulatorHost, Cause: err}
		}
	}
	if cfg.PublicBaseURL != "" && !isAbsoluteURL(cfg.PublicBaseURL) {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidPublicBaseURL, Value: cfg.PublicBaseURL}
	}
	return nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && strings.TrimSpace(u.Scheme) != "" && strings.TrimSpace(u.Host) != ""
}
