package obslog

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerParsesLevels(t *testing.T) {
	require.NotNil(t, NewLogger("debug"))
	require.NotNil(t, NewLogger("unknown"))
}

func TestRegistryRegistersCollectors(t *testing.T) {
	reg := Registry()
	MessagesAppended.WithLabelValues("user").Inc()

	count := testutil.ToFloat64(MessagesAppended.WithLabelValues("user"))
	require.GreaterOrEqual(t, count, float64(1))
	require.NotNil(t, reg)
}
