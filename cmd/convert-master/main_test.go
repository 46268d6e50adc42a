// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/convert-master/internal/convert"
	"github.com/pdiddy/convert-master/internal/secrets"
	"github.com/pdiddy/convert-master/pkg/types"
)

func newTestViper(t *testing.T, cfgFile string) *viper.Viper {
	t.Helper()
	t.Chdir(t.TempDir())
	v := viper.New()
	configure(v, cfgFile)
	return v
}

func TestLoadConfig_Defaults(t *testing.T) {
	v := newTestViper(t, "")
	c, err := loadConfig(v, "no-secrets")
	require.NoError(t, err)

	assert.Equal(t, types.DefaultDownloadDir, c.Bot.DownloadDir)
	assert.Equal(t, types.DefaultPollTimeout, c.Bot.PollTimeout)
	assert.Equal(t, types.DefaultTimeout, c.Conversion.Timeout)
	assert.Equal(t, types.DefaultJPEGQuality, c.Conversion.JPEGQuality)
	assert.Equal(t, "info", c.Log.Level)
	assert.Empty(t, c.Bot.Token)
	assert.Error(t, c.Validate())
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("CONVERT_MASTER_BOT_TOKEN", "env-token")
	t.Setenv("CONVERT_MASTER_BOT_DOWNLOAD_DIR", "/tmp/uploads")
	t.Setenv("CONVERT_MASTER_CONVERSION_JPEG_QUALITY", "75")
	t.Setenv("CONVERT_MASTER_CONVERSION_TIMEOUT", "30s")

	v := newTestViper(t, "")
	c, err := loadConfig(v, "no-secrets")
	require.NoError(t, err)

	assert.Equal(t, "env-token", c.Bot.Token)
	assert.Equal(t, "/tmp/uploads", c.Bot.DownloadDir)
	assert.Equal(t, 75, c.Conversion.JPEGQuality)
	assert.Equal(t, 30*time.Second, c.Conversion.Timeout)
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_TokenFromSecrets(t *testing.T) {
	v := newTestViper(t, "")
	dir := filepath.Join(".", ".secrets")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, secrets.TokenKey), []byte("file-token\n"), 0o600))

	c, err := loadConfig(v, dir)
	require.NoError(t, err)
	assert.Equal(t, "file-token", c.Bot.Token)
}

func TestLoadConfig_EnvironmentBeatsSecrets(t *testing.T) {
	t.Setenv("CONVERT_MASTER_BOT_TOKEN", "env-token")
	v := newTestViper(t, "")
	dir := filepath.Join(".", ".secrets")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, secrets.TokenKey), []byte("file-token"), 0o600))

	c, err := loadConfig(v, dir)
	require.NoError(t, err)
	assert.Equal(t, "env-token", c.Bot.Token)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
bot:
  download_dir: files
  poll_timeout: 30
log:
  format: json
health:
  addr: ":9090"
`), 0o644))

	v := newTestViper(t, path)
	c, err := loadConfig(v, "no-secrets")
	require.NoError(t, err)
	assert.Equal(t, "files", c.Bot.DownloadDir)
	assert.Equal(t, 30, c.Bot.PollTimeout)
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, ":9090", c.Health.Addr)
}

func TestWriteFormats(t *testing.T) {
	d := convert.NewDispatcher()

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeFormats(&buf, d, "table"))
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 11)
		assert.True(t, strings.HasPrefix(lines[0], "SOURCE"))
		assert.Equal(t, []string{"docx", "pdf", "docx-to-pdf"}, strings.Fields(lines[1]))
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeFormats(&buf, d, "json"))
		var entries []formatEntry
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
		assert.Len(t, entries, 10)
		assert.Contains(t, entries, formatEntry{Source: "ppt", Target: "pdf", Converter: "presentation-to-pdf"})
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeFormats(&buf, d, "yaml"))
		var entries []formatEntry
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &entries))
		assert.Contains(t, entries, formatEntry{Source: "tiff", Target: "png", Converter: "image"})
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, writeFormats(&bytes.Buffer{}, d, "xml"))
	})
}
