package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/svdparity/pkg/svdconv"
)

func TestConfigValidate(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "svdconv", cfg.ReferenceTool)
		assert.Equal(t, svdconv.DefaultTimeout, cfg.Timeout)
		assert.Positive(t, cfg.Jobs)
		assert.Equal(t, svdconv.FormatJSON, cfg.Format)
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		cfg := &Config{ReferenceTool: "/opt/svdconv", Format: svdconv.FormatText, Jobs: 3, Timeout: time.Second}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "/opt/svdconv", cfg.ReferenceTool)
		assert.Equal(t, 3, cfg.Jobs)
		assert.Equal(t, time.Second, cfg.Timeout)
	})

	t.Run("bad pattern", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Exclude = []string{"Maxim.*/[abc"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad format", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Format = svdconv.Format(42)
		assert.Error(t, cfg.Validate())
	})
}
