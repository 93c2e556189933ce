package app

import (
	"bytes"
	"os"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestTelegoLoggerMasksToken(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetLevel(log.DebugLevel)
	t.Cleanup(func() { log.SetOutput(os.Stdout) })

	l := newTelegoLogger("123:secret")
	l.Debugf("API call to: %q", "https://api.telegram.org/bot123:secret/getMe")
	l.Errorf("request failed: %s", "bot123:secret")

	assert.NotContains(t, buf.String(), "123:secret")
	assert.Contains(t, buf.String(), "botBOT_TOKEN/getMe")
}
