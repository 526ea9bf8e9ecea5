package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
app:
  name: eclat
  environment: test
database:
  path: /tmp/eclat-test.db
booking:
  slot_grid: ["09:00", "11:00", "14:00", "16:00", "18:00"]
  services:
    - id: soin-eclat
      label: "Soin éclat du teint 45min"
      duration_minutes: 45
    - id: massage-relaxant
      label: "Massage relaxant 60min"
      duration_minutes: 60
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "eclat", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "x-api-key", cfg.Auth.HeaderAPIKey)
	assert.Equal(t, "09:00", cfg.Booking.ReminderTime)
	assert.Len(t, cfg.Booking.Services, 2)

	engine, err := cfg.Schedule()
	require.NoError(t, err)
	assert.Equal(t, 5, engine.Grid().Len())
}

func TestLoadRejectsMalformedGrid(t *testing.T) {
	_, err := Load(writeConfig(t, `
database:
  path: /tmp/eclat-test.db
booking:
  slot_grid: ["09:00", "9h30"]
  services:
    - id: soin
      label: Soin
      duration_minutes: 45
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slot_grid")
}

func TestLoadRejectsDuplicateServices(t *testing.T) {
	_, err := Load(writeConfig(t, `
database:
  path: /tmp/eclat-test.db
booking:
  services:
    - id: soin
      label: Soin
      duration_minutes: 45
    - id: soin
      label: Soin bis
      duration_minutes: 60
`))
	require.Error(t, err)
}

func TestLoadRejectsMissingDatabasePath(t *testing.T) {
	_, err := Load(writeConfig(t, `
booking:
  services:
    - id: soin
      label: Soin
      duration_minutes: 45
`))
	require.Error(t, err)
}

func TestLoadRejectsAuthWithoutKeys(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+`
auth:
  enabled: true
`))
	require.Error(t, err)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("ECLAT_TEST_DB_PATH", "/tmp/expanded.db")
	cfg, err := Load(writeConfig(t, `
database:
  path: ${ECLAT_TEST_DB_PATH}
booking:
  services:
    - id: soin
      label: Soin
      duration_minutes: 45
`))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/expanded.db", cfg.Database.Path)
}
