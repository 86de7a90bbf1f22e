package providerconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullConfig = `
global:
  create_method: PATCH
  id_attribute: attributes/id
  uri: https://api.example.com/v1
  headers:
    X-Api-Version: "2"
resources:
  generate_data_source: false
  zoo:
    path: /zoos
  pet:
    path: /pets
    create:
      method: put
    read:
      path: /pets/lookup
      search:
        results_key: data/items
        search_key: name
        search_value: "{name}"
    force_new: [name]
    ignore_changes_to: [updated]
    sensitive: [token]
    generate_resource: false
  alpha:
    path: /alphas
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "PATCH", cfg.Global.CreateMethod)
	assert.Equal(t, "attributes/id", cfg.Global.IDAttribute)
	assert.Equal(t, map[string]string{"X-Api-Version": "2"}, cfg.Global.Headers)

	assert.False(t, cfg.Resources.GenerateDataSource)
	assert.True(t, cfg.Resources.GenerateResource)
	assert.Equal(t, []string{"zoo", "pet", "alpha"}, cfg.Resources.Names(), "document order is kept")

	pet, ok := cfg.Resources.Items.Get("pet")
	require.True(t, ok)
	assert.Equal(t, "/pets", pet.Path)
	assert.Equal(t, "put", pet.Create.Method)
	require.NotNil(t, pet.Read)
	assert.Equal(t, "/pets/lookup", pet.Read.Path)
	require.NotNil(t, pet.Read.Search)
	assert.Equal(t, "data/items", pet.Read.Search.ResultsKey)
	assert.Equal(t, "{name}", pet.Read.Search.SearchValue)
	assert.Equal(t, []string{"name"}, pet.ForceNew)
	assert.Equal(t, []string{"token"}, pet.Sensitive)
	require.NotNil(t, pet.GenerateResource)
	assert.False(t, *pet.GenerateResource)
	assert.Nil(t, pet.GenerateDataSource)
}

func TestParse_JSON(t *testing.T) {
	cfg, err := Parse([]byte(`{"resources": {"b": {"path": "/b"}, "a": {"path": "/a"}}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, cfg.Resources.Names())
	assert.True(t, cfg.Resources.GenerateDataSource)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		config     string
		wantErrMsg string
	}{
		{
			name:       "missing resources",
			config:     "global: {}",
			wantErrMsg: "resources",
		},
		{
			name:       "missing path",
			config:     "resources:\n  pet:\n    create:\n      method: POST",
			wantErrMsg: "path",
		},
		{
			name:       "unknown resource key",
			config:     "resources:\n  pet:\n    path: /pets\n    pth: /pets",
			wantErrMsg: "pth",
		},
		{
			name:       "legacy global key",
			config:     "global_defaults:\n  debug: true\nresources: {}",
			wantErrMsg: "global_defaults",
		},
		{
			name:       "wrong type",
			config:     "resources:\n  pet:\n    path: /pets\n    force_new: name",
			wantErrMsg: "force_new",
		},
		{
			name:       "search without key",
			config:     "resources:\n  pet:\n    path: /pets\n    read:\n      search:\n        search_value: x",
			wantErrMsg: "search_key",
		},
		{
			name:       "unsupported method",
			config:     "resources:\n  pet:\n    path: /pets\n    destroy:\n      method: FETCH",
			wantErrMsg: "FETCH",
		},
		{
			name:       "relative path",
			config:     "resources:\n  pet:\n    path: pets",
			wantErrMsg: "resources[pet].path",
		},
		{
			name:       "unsupported global method",
			config:     "global:\n  read_method: LIST\nresources: {}",
			wantErrMsg: "global.read_method",
		},
		{
			name:       "not yaml",
			config:     "resources: [",
			wantErrMsg: "error converting provider configuration to json",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.config))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErrMsg)
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "provider.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o600))

	cfg, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Resources.Items.Len())

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "error reading provider configuration")
}
