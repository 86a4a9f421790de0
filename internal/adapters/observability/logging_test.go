package observability

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Level(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, NewLogger("prod", "debug").GetLevel())
	require.Equal(t, zerolog.InfoLevel, NewLogger("dev", "nonsense").GetLevel())
	require.Equal(t, zerolog.InfoLevel, NewLogger("prod", "").GetLevel())
}
