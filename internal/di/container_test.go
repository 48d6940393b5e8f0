package di

import (
	"path/filepath"
	"testing"

	"github.com/mikey/spamguard/internal/config"
	"github.com/mikey/spamguard/internal/core"
	"github.com/mikey/spamguard/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, smtpEnabled bool) *config.Config {
	t.Helper()
	dir := t.TempDir()
	v := config.NewEmptyViper()
	v.Set("model.classifier_path", filepath.Join(dir, "missing_classifier.gob"))
	v.Set("model.vectorizer_path", filepath.Join(dir, "missing_vectorizer.gob"))
	v.Set("server.listen_address", "127.0.0.1:0")
	v.Set("smtp.enabled", smtpEnabled)
	v.Set("logging.level", "error")
	return config.NewFromViper(v)
}

func TestBuildContainerWiresFrontends(t *testing.T) {
	tests := []struct {
		name  string
		smtp  bool
		names []string
	}{
		{"http only", false, []string{"http"}},
		{"http and smtp", true, []string{"http", "smtp"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			container, err := BuildContainer(testConfig(t, tt.smtp))
			require.NoError(t, err)

			err = container.Invoke(func(frontends []ports.Frontend) {
				names := make([]string, len(frontends))
				for i, f := range frontends {
					names[i] = f.Name()
				}
				assert.Equal(t, tt.names, names)
			})
			require.NoError(t, err)
		})
	}
}

func TestBuildContainerMissingModels(t *testing.T) {
	container, err := BuildContainer(testConfig(t, false))
	require.NoError(t, err)

	err = container.Invoke(func(service *core.SpamFilterService, analyzer ports.SpamAnalyzer) {
		assert.False(t, service.Ready())
		assert.Error(t, service.LoadError())
		assert.Same(t, service, analyzer)
	})
	require.NoError(t, err)
}

func TestBuildContainerInvalidServerConfig(t *testing.T) {
	cfg := testConfig(t, false)
	cfg.GetViper().Set("server.read_timeout", "soon")

	container, err := BuildContainer(cfg)
	require.NoError(t, err)

	err = container.Invoke(func([]ports.Frontend) {})
	assert.ErrorContains(t, err, "server.read_timeout")
}
