package svcmgr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func fullDescriptor() Descriptor {
	return Descriptor{
		Name:         "api",
		Directory:    "/srv/api",
		Command:      "/usr/local/bin/bun run start",
		Description:  "API server",
		Env:          map[string]string{"PORT": "3000", "NODE_ENV": "production"},
		EnvFile:      "/srv/api/.env",
		User:         "deploy",
		Group:        "deploy",
		Restart:      RestartOnFailure,
		RestartDelay: 5,
		After:        []string{"network.target", "postgresql.service"},
		Requires:     []string{"postgresql.service"},
		Limits: &ResourceLimits{
			MemoryMB:   512,
			CPUPercent: 80,
			OpenFiles:  4096,
			Processes:  64,
		},
	}
}

func TestGenerateUnitFull(t *testing.T) {
	out := GenerateUnit(fullDescriptor(), ScopeSystem)

	for _, want := range []string{
		"[Unit]\n",
		"Description=API server\n",
		"After=network.target postgresql.service\n",
		"Requires=postgresql.service\n",
		"[Service]\n",
		"Type=simple\n",
		"WorkingDirectory=/srv/api\n",
		"ExecStart=/usr/local/bin/bun run start\n",
		"Restart=on-failure\n",
		"RestartSec=5\n",
		"User=deploy\n",
		"Group=deploy\n",
		"EnvironmentFile=/srv/api/.env\n",
		"MemoryMax=512M\n",
		"CPUQuota=80%\n",
		"LimitNOFILE=4096\n",
		"LimitNPROC=64\n",
		"StandardOutput=journal\n",
		"StandardError=journal\n",
		"[Install]\n",
		"WantedBy=multi-user.target\n",
	} {
		require.Contains(t, out, want)
	}

	// Env entries come out in sorted key order.
	nodeEnv := strings.Index(out, `Environment="NODE_ENV=production"`)
	port := strings.Index(out, `Environment="PORT=3000"`)
	require.True(t, nodeEnv >= 0 && port >= 0)
	require.Less(t, nodeEnv, port)
}

func TestGenerateUnitDefaults(t *testing.T) {
	d := Descriptor{Name: "worker", Directory: "/srv/worker", Command: "/usr/bin/worker"}
	out := GenerateUnit(d, ScopeSystem)

	require.Contains(t, out, "Description=worker service\n")
	require.Contains(t, out, "After=network.target\n")
	require.Contains(t, out, "Restart=always\n")
	require.NotContains(t, out, "Requires=")
	require.NotContains(t, out, "RestartSec=")
	require.NotContains(t, out, "User=")
	require.NotContains(t, out, "EnvironmentFile=")
	require.NotContains(t, out, "MemoryMax=")
	require.NotContains(t, out, "CPUQuota=")
}

func TestGenerateUnitUserScope(t *testing.T) {
	d := Descriptor{Name: "svc", Directory: "/home/u/svc", Command: "/usr/bin/svc"}
	out := GenerateUnit(d, ScopeUser)
	require.Contains(t, out, "WantedBy=default.target\n")
}

func TestGenerateUnitEscapesQuotes(t *testing.T) {
	d := Descriptor{
		Name:      "svc",
		Directory: "/srv/svc",
		Command:   "/usr/bin/svc",
		Env:       map[string]string{"MSG": `say "hi"`},
	}
	out := GenerateUnit(d, ScopeSystem)
	require.Contains(t, out, `Environment="MSG=say \"hi\""`)
}

func TestGenerateUnitDeterministic(t *testing.T) {
	d := fullDescriptor()
	first := GenerateUnit(d, ScopeSystem)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, GenerateUnit(d, ScopeSystem))
	}
}

func TestUnitRestartMapping(t *testing.T) {
	tests := []struct {
		policy RestartPolicy
		want   string
	}{
		{RestartAlways, "always"},
		{RestartOnFailure, "on-failure"},
		{RestartOnAbnormal, "on-abnormal"},
		{RestartNever, "no"},
	}
	for _, tt := range tests {
		if got := unitRestart(tt.policy); got != tt.want {
			t.Errorf("unitRestart(%v) = %q, want %q", tt.policy, got, tt.want)
		}
	}
}
