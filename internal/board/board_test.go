package board

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/motion-strip/internal/adc"
	"github.com/sweeney/motion-strip/internal/gpio"
	"github.com/sweeney/motion-strip/internal/logic"
)

var (
	_ logic.MotionSensor = (*Board)(nil)
	_ logic.LightSensor  = (*Board)(nil)
	_ logic.Strip        = (*Board)(nil)
	_ logic.Clock        = (*SystemClock)(nil)
)

func newTestBoard() (*Board, *gpio.FakeInput, *gpio.FakeOutput, *adc.FakeReader) {
	pir := gpio.NewFakeInput(false)
	out := gpio.NewFakeOutput()
	ldr := adc.NewFakeReader(100)
	return New(pir, out, ldr, adc.DefaultMax), pir, out, ldr
}

func TestMotionDetected(t *testing.T) {
	b, pir, _, _ := newTestBoard()
	pir.Samples = []bool{true, false}

	assert.True(t, b.MotionDetected())
	assert.False(t, b.MotionDetected())
}

func TestMotionReadErrorFallsBack(t *testing.T) {
	b, pir, _, _ := newTestBoard()
	pir.Samples = []bool{true}
	require.True(t, b.MotionDetected())

	pir.ReadError = errors.New("line gone")
	assert.True(t, b.MotionDetected(), "expected last good value")
	assert.Equal(t, 1, b.Errors().MotionReads)
}

func TestLightLevelClamps(t *testing.T) {
	b, _, _, ldr := newTestBoard()
	ldr.Samples = []int{-5, 2000, 512}

	assert.Equal(t, 0, b.LightLevel())
	assert.Equal(t, adc.DefaultMax, b.LightLevel())
	assert.Equal(t, 512, b.LightLevel())
	assert.Equal(t, 2, b.Errors().Clamped)
}

func TestLightReadErrorFallsBack(t *testing.T) {
	b, _, _, ldr := newTestBoard()
	ldr.Samples = []int{42}
	require.Equal(t, 42, b.LightLevel())

	ldr.ReadError = adc.ErrTimeout
	assert.Equal(t, 42, b.LightLevel())
	assert.Equal(t, 1, b.Errors().LightReads)
}

func TestStripWriteAndReadBack(t *testing.T) {
	b, _, out, _ := newTestBoard()

	b.SetStrip(true)
	assert.True(t, b.StripOn())
	assert.Equal(t, []bool{true}, out.Writes)

	out.Level = false
	assert.False(t, b.StripOn(), "read-back must report the physical level")
}

func TestStripErrors(t *testing.T) {
	b, _, out, _ := newTestBoard()
	b.SetStrip(true)

	out.WriteError = errors.New("busy")
	b.SetStrip(false)
	assert.Equal(t, 1, b.Errors().StripWrites)

	out.ValueError = errors.New("busy")
	assert.True(t, b.StripOn(), "expected last written level")
	assert.Equal(t, 1, b.Errors().StripReads)
}

func TestClose(t *testing.T) {
	b, pir, out, ldr := newTestBoard()
	b.SetStrip(true)

	require.NoError(t, b.Close())
	assert.True(t, pir.Closed)
	assert.True(t, out.Closed)
	assert.False(t, out.Level)
	assert.True(t, ldr.Closed)
}

func TestSystemClock(t *testing.T) {
	c := NewSystemClock()
	before := c.Millis()
	c.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, c.Millis()-before, uint32(5))
}
