package svcmgr

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    []string
	}{
		{"simple", "bun run start", []string{"bun", "run", "start"}},
		{"double_quoted", `bun run "my script.ts"`, []string{"bun", "run", "my script.ts"}},
		{"single_quoted", `sh -c 'echo hi'`, []string{"sh", "-c", "echo hi"}},
		{"nested_quotes", `sh -c "echo 'hi there'"`, []string{"sh", "-c", "echo 'hi there'"}},
		{"tabs_and_runs_of_spaces", "bun \t  run   start", []string{"bun", "run", "start"}},
		{"unterminated_quote", `bun "run start`, []string{"bun", "run start"}},
		{"empty", "", nil},
		{"only_spaces", "   ", nil},
		{"adjacent_quote", `--flag="a b"`, []string{"--flag=a b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitCommand(tt.command)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitCommand(%q) = %v, want %v", tt.command, got, tt.want)
			}
		})
	}
}

func TestGeneratePlistBasics(t *testing.T) {
	d := Descriptor{
		Name:      "api",
		Directory: "/srv/api",
		Command:   "/usr/local/bin/bun run start",
		Env:       map[string]string{"PORT": "3000", "NODE_ENV": "production"},
		User:      "deploy",
		Group:     "staff",
		Restart:   RestartAlways,
	}
	out := GeneratePlist("com.bunman.api", d, "/var/log/bunman/api.log")

	require.Contains(t, out, "<key>Label</key>\n\t<string>com.bunman.api</string>")
	require.Contains(t, out, "<string>/usr/local/bin/bun</string>")
	require.Contains(t, out, "<string>run</string>")
	require.Contains(t, out, "<string>start</string>")
	require.Contains(t, out, "<key>WorkingDirectory</key>\n\t<string>/srv/api</string>")
	require.Contains(t, out, "<key>UserName</key>\n\t<string>deploy</string>")
	require.Contains(t, out, "<key>GroupName</key>\n\t<string>staff</string>")
	require.Contains(t, out, "<key>RunAtLoad</key>\n\t<true/>")
	require.Contains(t, out, "<key>StandardOutPath</key>\n\t<string>/var/log/bunman/api.log</string>")
	require.Contains(t, out, "<key>StandardErrorPath</key>\n\t<string>/var/log/bunman/api.log</string>")

	// Sorted env keys.
	nodeEnv := strings.Index(out, "<key>NODE_ENV</key>")
	port := strings.Index(out, "<key>PORT</key>")
	require.True(t, nodeEnv >= 0 && port >= 0)
	require.Less(t, nodeEnv, port)
}

func TestGeneratePlistKeepAlive(t *testing.T) {
	base := Descriptor{Name: "svc", Directory: "/srv/svc", Command: "/usr/bin/svc"}

	always := base
	always.Restart = RestartAlways
	out := GeneratePlist("com.bunman.svc", always, "")
	require.Contains(t, out, "<key>KeepAlive</key>\n\t<true/>")

	onFailure := base
	onFailure.Restart = RestartOnFailure
	out = GeneratePlist("com.bunman.svc", onFailure, "")
	require.Contains(t, out, "<key>KeepAlive</key>")
	require.Contains(t, out, "<key>SuccessfulExit</key>\n\t\t<false/>")

	// launchd has no abnormal-exit distinction: on-abnormal must not be
	// collapsed into the SuccessfulExit dict, or the job relaunches on
	// every failure.
	onAbnormal := base
	onAbnormal.Restart = RestartOnAbnormal
	out = GeneratePlist("com.bunman.svc", onAbnormal, "")
	require.NotContains(t, out, "KeepAlive")

	never := base
	never.Restart = RestartNever
	out = GeneratePlist("com.bunman.svc", never, "")
	require.NotContains(t, out, "KeepAlive")
}

func TestGeneratePlistResourceLimits(t *testing.T) {
	d := Descriptor{
		Name:      "svc",
		Directory: "/srv/svc",
		Command:   "/usr/bin/svc",
		Limits:    &ResourceLimits{MemoryMB: 256, OpenFiles: 1024},
	}
	out := GeneratePlist("com.bunman.svc", d, "")

	require.Contains(t, out, "<key>MemoryLimit</key>\n\t\t<integer>268435456</integer>")
	require.Contains(t, out, "<key>NumberOfFiles</key>\n\t\t<integer>1024</integer>")
}

func TestGeneratePlistThrottleInterval(t *testing.T) {
	d := Descriptor{
		Name:         "svc",
		Directory:    "/srv/svc",
		Command:      "/usr/bin/svc",
		Restart:      RestartAlways,
		RestartDelay: 10,
	}
	out := GeneratePlist("com.bunman.svc", d, "")
	require.Contains(t, out, "<key>ThrottleInterval</key>\n\t<integer>10</integer>")
}

func TestGeneratePlistEscapesXML(t *testing.T) {
	d := Descriptor{
		Name:      "svc",
		Directory: "/srv/svc",
		Command:   "/usr/bin/svc",
		Env:       map[string]string{"QUERY": `a<b&c>"d"`},
	}
	out := GeneratePlist("com.bunman.svc", d, "")
	require.Contains(t, out, "a&lt;b&amp;c&gt;&quot;d&quot;")
	require.NotContains(t, out, `a<b`)
}

func TestGeneratePlistDeterministic(t *testing.T) {
	d := Descriptor{
		Name:      "svc",
		Directory: "/srv/svc",
		Command:   "/usr/bin/svc --flag",
		Env: map[string]string{
			"A": "1", "B": "2", "C": "3", "D": "4", "E": "5",
		},
		Restart: RestartOnFailure,
	}
	first := GeneratePlist("com.bunman.svc", d, "/tmp/svc.log")
	for i := 0; i < 20; i++ {
		require.Equal(t, first, GeneratePlist("com.bunman.svc", d, "/tmp/svc.log"))
	}
}
