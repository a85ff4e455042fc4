package config

import "testing"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FIREBASE_PROJECT_ID", "test-project")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/tmp/creds.json")
	t.Setenv("FIREBASE_WEB_API_KEY", "web-api-key")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("GIN_MODE", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want default 8080", cfg.Port)
	}
	if cfg.GinMode != "debug" {
		t.Errorf("GinMode = %q, want default debug", cfg.GinMode)
	}
	if cfg.FirebaseProjectID != "test-project" {
		t.Errorf("FirebaseProjectID = %q", cfg.FirebaseProjectID)
	}
}

func TestLoadConfigMissingProjectID(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FIREBASE_PROJECT_ID", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("want an error when FIREBASE_PROJECT_ID is missing")
	}
}

func TestLoadConfigMissingCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	t.Setenv("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("want an error when no credential source is configured")
	}
}

func TestLoadConfigBase64CredentialsSuffice(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	t.Setenv("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64", "eyJmYWtlIjoidHJ1ZSJ9")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.FirebaseServiceAccountJSONBase64 == "" {
		t.Error("base64 credentials not loaded")
	}
}
