package utils

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConstError(t *testing.T) {
	const errConst = ConstError("const")

	var _ error = errConst

	err := fmt.Errorf("wrap: %w", errConst)
	assert.True(t, errors.Is(err, errConst))
	assert.Equal(t, "wrap: const", err.Error())
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time {
	return time.Time(c)
}

func TestTimestamp(t *testing.T) {
	should := assert.New(t)

	at := time.Unix(0, 64*64+1)
	should.Equal("101", timestampFromClock(fixedClock(at)))

	should.NotEmpty(Timestamp())
	should.Empty(timestampFromClock(fixedClock(time.Unix(0, 0))))
}
