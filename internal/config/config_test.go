package config

import "testing"

func TestValidateRejectsMissingRedisWithoutFallback(t *testing.T) {
	c := Config{Env: "development"}
	if err := c.validate(); err == nil {
		t.Fatal("expected error when RedisURL empty and in-memory fallback disallowed")
	}
}

func TestValidateAllowsInMemoryFallback(t *testing.T) {
	c := Config{Env: "development", AllowInMemoryRoomStore: true}
	if err := c.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsDBPersistenceWithoutURL(t *testing.T) {
	c := Config{Env: "development", AllowInMemoryRoomStore: true, EnableDBPersistence: true}
	if err := c.validate(); err == nil {
		t.Fatal("expected error when persistence enabled without DATABASE_URL")
	}
}

func TestValidateRequiresCORSOriginsInProduction(t *testing.T) {
	c := Config{Env: "production", RedisURL: "redis://localhost:6379"}
	if err := c.validate(); err == nil {
		t.Fatal("expected error for missing CORS_ORIGINS in production")
	}
}

func TestValidateRejectsWildcardCORSInProduction(t *testing.T) {
	c := Config{Env: "production", RedisURL: "redis://localhost:6379", CORSOrigins: []string{"*"}}
	if err := c.validate(); err == nil {
		t.Fatal("expected error for wildcard CORS_ORIGINS in production")
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" https://a.com ,https://b.com,")
	if len(got) != 2 || got[0] != "https://a.com" || got[1] != "https://b.com" {
		t.Fatalf("unexpected split result: %v", got)
	}
}
