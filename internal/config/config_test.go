package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.MQTT.TopicBase != "doors" {
		t.Errorf("expected default topic base doors, got %q", cfg.MQTT.TopicBase)
	}
	if cfg.Engine.DefaultDoorID != nil {
		t.Errorf("expected no default door, got %v", cfg.Engine.DefaultDoorID)
	}
	if cfg.Engine.BusHandlerLimit != 16 {
		t.Errorf("expected handler limit 16, got %d", cfg.Engine.BusHandlerLimit)
	}
}

func TestLoadRejectsBadInt(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed SERVER_PORT")
	}
}

func TestLoadDefaultDoorID(t *testing.T) {
	t.Setenv("DEFAULT_DOOR_ID", "12")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.DefaultDoorID == nil || *cfg.Engine.DefaultDoorID != 12 {
		t.Errorf("expected default door 12, got %v", cfg.Engine.DefaultDoorID)
	}

	t.Setenv("DEFAULT_DOOR_ID", "abc")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed DEFAULT_DOOR_ID")
	}
}

func TestValidateMissingRequired(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure with empty config")
	}
}

func TestValidateComplete(t *testing.T) {
	cfg := &Config{}
	cfg.Database.URL = "postgres://localhost/gatekeeper"
	cfg.Admin.JWTSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, b ,,c ")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}
