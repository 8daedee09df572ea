package daemon

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateServiceFiles(t *testing.T) {
	cfg := ServiceConfig{
		BinaryPath:       "/usr/local/bin/simplay",
		LogPath:          "/home/me/.local/share/simplay/logs",
		WorkingDirectory: "/home/me",
	}

	tests := []struct {
		name     string
		generate func(ServiceConfig) (string, error)
		want     []string
	}{
		{
			name:     "launchd",
			generate: GeneratePlist,
			want: []string{
				"<string>" + ServiceLabel + "</string>",
				"<string>/usr/local/bin/simplay</string>",
				"<string>daemon</string>",
				"/home/me/.local/share/simplay/logs/simplay.log",
				"<string>/home/me</string>",
			},
		},
		{
			name:     "systemd",
			generate: GenerateSystemdUnit,
			want: []string{
				"ExecStart=/usr/local/bin/simplay daemon",
				"WorkingDirectory=/home/me",
				"StandardOutput=append:/home/me/.local/share/simplay/logs/simplay.log",
				"WantedBy=default.target",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.generate(cfg)
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestSystemdUnitPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	got, err := SystemdUnitPath()
	if err != nil {
		t.Fatalf("SystemdUnitPath: %v", err)
	}
	if want := filepath.Join("/cfg", "systemd", "user", SystemdUnitName); got != want {
		t.Errorf("SystemdUnitPath() = %q, want %q", got, want)
	}
}

func TestPlistPath(t *testing.T) {
	t.Setenv("HOME", "/home/me")
	got, err := PlistPath()
	if err != nil {
		t.Fatalf("PlistPath: %v", err)
	}
	if want := "/home/me/Library/LaunchAgents/" + ServiceLabel + ".plist"; got != want {
		t.Errorf("PlistPath() = %q, want %q", got, want)
	}
}
