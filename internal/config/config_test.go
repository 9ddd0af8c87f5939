package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TZ", "")
	t.Setenv("ADMIN_IDS", "")
	t.Setenv("NOTIFY_INTERVAL", "")
	t.Setenv("NOTIFY_BATCH", "")
	t.Setenv("DB_TIMEOUT", "")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Location.String() != "Asia/Kuala_Lumpur" {
		t.Fatalf("location = %s", cfg.Location)
	}
	if cfg.NotifyInterval != time.Minute || cfg.NotifyBatch != 100 || cfg.DBTimeout != 5*time.Second {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("http addr = %s", cfg.HTTPAddr)
	}
}

func TestFromEnv_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"postgres without dsn": {"STORE": "postgres", "DATABASE_URL": ""},
		"unknown store":        {"STORE": "redis"},
		"bad interval":         {"STORE": "memory", "NOTIFY_INTERVAL": "soon"},
		"bad batch":            {"STORE": "memory", "NOTIFY_BATCH": "0"},
		"bad admin id":         {"STORE": "memory", "ADMIN_IDS": "12,abc"},
		"bad tz":               {"STORE": "memory", "TZ": "Mars/Olympus"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"STORE", "DATABASE_URL", "NOTIFY_INTERVAL", "NOTIFY_BATCH", "ADMIN_IDS", "TZ", "DB_TIMEOUT"} {
				t.Setenv(k, env[k])
			}
			if _, err := FromEnv(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs(" 1, 2;3\n4 ")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 4 || ids[3] != 4 {
		t.Fatalf("ids = %v", ids)
	}
	cfg := &Config{AdminIDs: ids}
	if !cfg.IsAdminChat(3) || cfg.IsAdminChat(5) {
		t.Fatal("IsAdminChat mismatch")
	}
}
