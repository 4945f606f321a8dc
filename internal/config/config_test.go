package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PAGE_SIZE", "HTTP_TIMEOUT", "SESSION_IDLE_TIMEOUT", "CATALOG_BASEURL", "LOCALE"} {
		t.Setenv(k, "")
	}
	c := Load()
	if c.PageSize != 12 || c.HTTPTimeout != 10*time.Second || c.SessionIdleTimeout != 30*time.Minute {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.CatalogBaseURL == "" || c.Locale != "en" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PAGE_SIZE", "24")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("SESSION_IDLE_TIMEOUT", "5m")
	t.Setenv("CATALOG_BASEURL", "http://catalog.test/api")
	t.Setenv("LOCALE", "de")

	c := Load()
	if c.PageSize != 24 || c.HTTPTimeout != 3*time.Second || c.SessionIdleTimeout != 5*time.Minute {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if c.CatalogBaseURL != "http://catalog.test/api" || c.Locale != "de" {
		t.Fatalf("overrides not applied: %+v", c)
	}
}
