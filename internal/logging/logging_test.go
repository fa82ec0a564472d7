package logging

import "testing"

func TestInit(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"json debug", Config{Level: "debug", Format: "json"}, false},
		{"console warn", Config{Level: "WARN", Format: "Console"}, false},
		{"bad format", Config{Format: "xml"}, true},
		{"bad level", Config{Level: "loud"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Init(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Init() error = %v, wantErr %v", err, tt.wantErr)
			}
			Infof("logger ready: %s", tt.name)
			Sync()
		})
	}
}

func TestLogger_NotNil(t *testing.T) {
	if Logger() == nil {
		t.Fatal("Logger() should never be nil")
	}
}
