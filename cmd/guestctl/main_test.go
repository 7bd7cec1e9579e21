package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/soiree/internal/models"
)

func init() {
	color.NoColor = true
}

const fixtureYAML = `guests:
  - code: host01
    name: Gospodarz
    role: admin
    max_invites: 20
  - code: ciocia
    name: Ciocia Basia
    role: family
    invited_by: HOST01
timeline:
  - time: "18:00"
    title: Powitanie
    order: 1
`

func writeWorkspace(t *testing.T) (configDir, fixture string) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "guests.sqlite")
	cfg := "database:\n  driver: sqlite\n  path: " + dbPath + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(cfg), 0o600))

	fixture = filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(fixture, []byte(fixtureYAML), 0o600))
	return dir, fixture
}

func TestSeedCodesAndExport(t *testing.T) {
	dir, fixture := writeWorkspace(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, run(ctx, []string{"-config", dir, "seed", fixture}, &out))
	require.Contains(t, out.String(), "Guests: 2 created, 0 already present")
	require.Contains(t, out.String(), "Timeline: 1 created, 0 skipped")

	out.Reset()
	require.NoError(t, run(ctx, []string{"-config", dir, "seed", fixture}, &out))
	require.Contains(t, out.String(), "Guests: 0 created, 2 already present")

	out.Reset()
	require.NoError(t, run(ctx, []string{"-config", dir, "codes"}, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "NAME")
	require.Contains(t, lines[1], "Ciocia Basia")
	require.Contains(t, lines[1], "CIOCIA")
	require.Contains(t, lines[2], "HOST01")
	require.Contains(t, lines[2], models.RoleAdmin)

	out.Reset()
	require.NoError(t, run(ctx, []string{"-config", dir, "export"}, &out))
	require.True(t, strings.HasPrefix(out.String(), "Name,Code,Role"))
	require.Contains(t, out.String(), `"Ciocia Basia","CIOCIA","FAMILY"`)
}

func TestRunRejectsUnknownCommands(t *testing.T) {
	dir, _ := writeWorkspace(t)

	var out bytes.Buffer
	require.Error(t, run(context.Background(), nil, &out))
	require.Contains(t, out.String(), "Usage: guestctl")

	require.ErrorContains(t, run(context.Background(), []string{"-config", dir, "dance"}, &out), "unknown command")
	require.Error(t, run(context.Background(), []string{"-config", dir, "seed"}, &out))
	require.NoError(t, run(context.Background(), []string{"help"}, &out))
}

func TestWriteCodesEmpty(t *testing.T) {
	var out bytes.Buffer
	writeCodes(&out, nil)
	require.Equal(t, "No guests found\n", out.String())
}
