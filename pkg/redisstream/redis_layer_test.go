package redisstream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSettingsWithDefaults(t *testing.T) {
	s := Settings{Enabled: true, Group: "g"}.WithDefaults()
	require.Equal(t, Settings{
		Enabled:  true,
		Addr:     DefaultAddr,
		Stream:   DefaultStream,
		Group:    "g",
		Consumer: DefaultConsumer,
	}, s)
}
