package config

import (
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if cfg.Output.Dir != "agent_logs" {
		t.Errorf("Output.Dir = %q, want agent_logs", cfg.Output.Dir)
	}
	if cfg.Output.Title != "Agent Execution Timeline" {
		t.Errorf("Output.Title = %q", cfg.Output.Title)
	}
	if cfg.Session.UnknownCap != 1000 {
		t.Errorf("Session.UnknownCap = %d, want 1000", cfg.Session.UnknownCap)
	}
	if cfg.Session.FlushInterval != "30s" {
		t.Errorf("Session.FlushInterval = %q, want 30s", cfg.Session.FlushInterval)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Output:  OutputConfig{Dir: "traces", Title: "My run"},
		Session: SessionConfig{UnknownCap: 50, FlushInterval: "5s"},
	}
	applyDefaults(cfg)

	if cfg.Output.Dir != "traces" || cfg.Output.Title != "My run" {
		t.Errorf("explicit output settings overwritten: %+v", cfg.Output)
	}
	if cfg.Session.UnknownCap != 50 || cfg.Session.FlushInterval != "5s" {
		t.Errorf("explicit session settings overwritten: %+v", cfg.Session)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid",
			config: Config{
				Session: SessionConfig{UnknownCap: 10, FlushInterval: "30s"},
			},
			wantErr: false,
		},
		{
			name: "negative cap",
			config: Config{
				Session: SessionConfig{UnknownCap: -1, FlushInterval: "30s"},
			},
			wantErr: true,
		},
		{
			name: "bad flush interval",
			config: Config{
				Session: SessionConfig{FlushInterval: "soon"},
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validate(&tc.config)
			if (err != nil) != tc.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFlushInterval(t *testing.T) {
	cfg := &Config{Session: SessionConfig{FlushInterval: "45s"}}
	d, err := cfg.FlushInterval()
	if err != nil {
		t.Fatalf("FlushInterval() error: %v", err)
	}
	if d != 45*time.Second {
		t.Errorf("FlushInterval() = %v, want 45s", d)
	}
}
