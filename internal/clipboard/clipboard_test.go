package clipboard

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyEmpty(t *testing.T) {
	_, err := Copy("")
	require.ErrorIs(t, err, ErrEmpty)
}

func TestOSC52Sequence(t *testing.T) {
	enc := base64.StdEncoding.EncodeToString([]byte("learnsolo462@gmail.com"))
	assert.Equal(t, "\x1b]52;c;"+enc+"\x07", osc52(enc, false))
	assert.Equal(t, "\x1bPtmux;\x1b\x1b]52;c;"+enc+"\x07\x1b\\", osc52(enc, true))
}

func TestWriteOSC52(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeOSC52(&buf, "hi", false))
	assert.Equal(t, "\x1b]52;c;aGk=\x07", buf.String())
}

func TestSupportsOSC52(t *testing.T) {
	tests := []struct {
		name    string
		tmux    string
		program string
		term    string
		want    bool
	}{
		{"tmux", "/tmp/tmux-1000/default,1,0", "", "screen", true},
		{"iterm", "", "iTerm.app", "xterm-256color", true},
		{"kitty", "", "", "xterm-kitty", true},
		{"plain xterm", "", "", "xterm-256color", false},
		{"dumb", "", "", "dumb", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TMUX", tt.tmux)
			t.Setenv("TERM_PROGRAM", tt.program)
			t.Setenv("TERM", tt.term)
			assert.Equal(t, tt.want, SupportsOSC52())
		})
	}
}
