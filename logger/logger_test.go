package logger

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
)

func TestEnv(t *testing.T) {
	should := assert.New(t)

	t.Setenv(envLogLevel, "3")
	should.Equal(3, envInt(envLogLevel, 0))

	t.Setenv(envLogLevel, "verbose")
	should.Equal(7, envInt(envLogLevel, 7))

	t.Setenv(envLogEnable, "false")
	should.False(envBool(envLogEnable, true))

	t.Setenv(envLogEnable, "")
	should.True(envBool(envLogEnable, true))
}

func TestDisabledLoggerDiscards(t *testing.T) {
	t.Setenv(envLogEnable, "0")

	should := assert.New(t)
	should.Equal(logr.Discard().GetSink(), newDefault().GetSink())
}

func TestReplaceLogger(t *testing.T) {
	var lines []string
	captured := funcr.New(func(prefix, args string) {
		lines = append(lines, prefix+" "+args)
	}, funcr.Options{})

	old := l
	defer ReplaceLogger(old)

	ReplaceLogger(captured)
	GetLogger("session").Info("opened", "sid", "abc")

	if assert.Len(t, lines, 1) {
		assert.Contains(t, lines[0], "session")
		assert.Contains(t, lines[0], `"sid"="abc"`)
	}
}
