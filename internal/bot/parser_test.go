package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	p := NewCommandParser()

	tests := []struct {
		text      string
		cmd       string
		args      []string
		isCommand bool
	}{
		{"/sleep", "sleep", nil, true},
		{"  /WAKE 4 flying over sea ", "wake", []string{"4", "flying", "over", "sea"}, true},
		{"/streak@DreamWeaverBot", "streak", nil, true},
		{"!history", "history", nil, true},
		{".tz Europe/Berlin", "tz", []string{"Europe/Berlin"}, true},
		{"good night", "", nil, false},
		{"/", "", nil, false},
		{"/@bot", "", nil, false},
		{"", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd, args, ok := p.ParseCommand(tt.text)
			assert.Equal(t, tt.isCommand, ok)
			assert.Equal(t, tt.cmd, cmd)
			assert.Equal(t, tt.args, args)
		})
	}
}
