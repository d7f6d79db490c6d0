package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKeywordConfig_EmbeddedDefaults(t *testing.T) {
	cfg, err := LoadKeywordConfig("")
	require.NoError(t, err)

	assert.Contains(t, cfg.Sentinels, "unknown")
	assert.Contains(t, cfg.Sentinels, "अज्ञात")

	names := make([]string, 0, len(cfg.Categories))
	for _, rule := range cfg.Categories {
		names = append(names, rule.Name)
	}
	assert.Equal(t, []string{"person", "location", "incident", "area_committee", "weapon", "date"}, names)
}

func TestLoadKeywordConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	content := `
sentinels:
  - redacted
categories:
  - name: weapon
    keywords:
      - launcher
    patterns:
      - '(?i)\blauncher\s+(\w+)'
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadKeywordConfig(path)
	require.NoError(t, err)

	// The file replaces the embedded tables entirely.
	assert.Equal(t, []string{"redacted"}, cfg.Sentinels)
	require.Len(t, cfg.Categories, 1)
	assert.Equal(t, "weapon", cfg.Categories[0].Name)
}

func TestLoadKeywordConfig_MissingFile(t *testing.T) {
	cfg, err := LoadKeywordConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadKeywordConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "not yaml",
			content: "{{{",
		},
		{
			name: "no categories",
			content: `
sentinels:
  - unknown
`,
		},
		{
			name: "unknown category",
			content: `
categories:
  - name: vehicles
    keywords:
      - truck
`,
		},
		{
			name: "duplicate category",
			content: `
categories:
  - name: weapon
    keywords:
      - gun
  - name: weapon
    keywords:
      - rifle
`,
		},
		{
			name: "category without keywords",
			content: `
categories:
  - name: weapon
    keywords: []
`,
		},
		{
			name: "blank keyword",
			content: `
categories:
  - name: weapon
    keywords:
      - "  "
`,
		},
		{
			name: "invalid pattern",
			content: `
categories:
  - name: weapon
    keywords:
      - gun
    patterns:
      - '(unclosed'
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "keywords.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			cfg, err := LoadKeywordConfig(path)
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestKeywordConfig_SentinelSet(t *testing.T) {
	cfg := &KeywordConfig{Sentinels: []string{" Unknown ", "अज्ञात", "N/A"}}

	set := cfg.SentinelSet()
	assert.Len(t, set, 3)
	assert.Contains(t, set, "unknown")
	assert.Contains(t, set, "अज्ञात")
	assert.Contains(t, set, "n/a")
}
