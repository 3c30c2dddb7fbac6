package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHonoursLevel(t *testing.T) {
	tests := []struct {
		level   string
		debugOn bool
		infoOn  bool
		warnOn  bool
	}{
		{level: "debug", debugOn: true, infoOn: true, warnOn: true},
		{level: "info", infoOn: true, warnOn: true},
		{level: "warn", warnOn: true},
		{level: "bogus", infoOn: true, warnOn: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.level)
			t.Setenv("LOG_ENCODING", "console")
			l, err := New("surety-test")
			require.NoError(t, err)
			assert.Equal(t, tt.debugOn, l.Core().Enabled(-1))
			assert.Equal(t, tt.infoOn, l.Core().Enabled(0))
			assert.Equal(t, tt.warnOn, l.Core().Enabled(1))
		})
	}
}
