package adc

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

// fakePort replays reply bytes and behaves like a timed-out serial port
// (0, nil) once they are exhausted.
type fakePort struct {
	reply    *bytes.Reader
	written  bytes.Buffer
	readErr  error
	writeErr error
	closed   bool
}

func newFakePort(reply string) *fakePort {
	return &fakePort{reply: bytes.NewReader([]byte(reply))}
}

func (p *fakePort) Read(b []byte) (int, error) {
	if p.readErr != nil {
		return 0, p.readErr
	}
	if p.reply.Len() == 0 {
		return 0, nil
	}
	return p.reply.Read(b)
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.written.Write(b)
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func TestSerialReaderRead(t *testing.T) {
	port := newFakePort("512\n")
	r := NewSerialReader(port)

	v, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, 512, v)
	assert.Equal(t, "R\n", port.written.String())
}

func TestSerialReaderConsecutiveReads(t *testing.T) {
	port := newFakePort("10\r\n1023\n0\n")
	r := NewSerialReader(port)

	for _, want := range []int{10, 1023, 0} {
		v, err := r.Read()
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
	assert.Equal(t, "R\nR\nR\n", port.written.String())
}

func TestSerialReaderTimeout(t *testing.T) {
	r := NewSerialReader(newFakePort("51"))

	_, err := r.Read()
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestSerialReaderDiscardsLateReply(t *testing.T) {
	port := newFakePort("")
	r := NewSerialReader(port)

	_, err := r.Read()
	require.ErrorIs(t, err, ErrTimeout)

	// The answer to the timed-out request lands just before the next one.
	port.reply = bytes.NewReader([]byte("100\n200\n"))
	v, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, 200, v)

	port.reply = bytes.NewReader([]byte("300\n"))
	v, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, 300, v)
}

func TestSerialReaderUnansweredRequest(t *testing.T) {
	port := newFakePort("")
	r := NewSerialReader(port)

	_, err := r.Read()
	require.ErrorIs(t, err, ErrTimeout)

	// The bridge never answered the first request, so the only line is current.
	port.reply = bytes.NewReader([]byte("300\n"))
	v, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, 300, v)

	port.reply = bytes.NewReader([]byte("301\n"))
	v, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, 301, v)
}

// resettingPort answers each request with the next queued reply, behind
// whatever was already waiting in its input buffer.
type resettingPort struct {
	*fakePort
	answers []string
	resets  int
}

func (p *resettingPort) ResetInputBuffer() error {
	p.resets++
	p.reply = bytes.NewReader(nil)
	return nil
}

func (p *resettingPort) Write(b []byte) (int, error) {
	n, err := p.fakePort.Write(b)
	if err != nil || len(p.answers) == 0 {
		return n, err
	}
	rest := make([]byte, p.reply.Len())
	p.reply.Read(rest)
	p.reply = bytes.NewReader(append(rest, p.answers[0]...))
	p.answers = p.answers[1:]
	return n, nil
}

func TestSerialReaderResetsInputBuffer(t *testing.T) {
	port := &resettingPort{fakePort: newFakePort("100\n"), answers: []string{"200\n"}}
	r := NewSerialReader(port)

	v, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, 200, v)
	assert.Equal(t, 1, port.resets)
}

func TestSerialReaderResetError(t *testing.T) {
	port := &failingResetPort{fakePort: newFakePort("1\n")}
	_, err := NewSerialReader(port).Read()
	assert.ErrorContains(t, err, "reset input")
	assert.Empty(t, port.written.String())
}

type failingResetPort struct {
	*fakePort
}

func (p *failingResetPort) ResetInputBuffer() error {
	return errors.New("bad fd")
}

func TestSerialReaderGarbage(t *testing.T) {
	r := NewSerialReader(newFakePort("abc\n"))

	_, err := r.Read()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse reading")
}

func TestSerialReaderReplyTooLong(t *testing.T) {
	r := NewSerialReader(newFakePort("12345678901234567890\n"))

	_, err := r.Read()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reply too long")
}

func TestSerialReaderPortErrors(t *testing.T) {
	port := newFakePort("1\n")
	port.writeErr = errors.New("unplugged")
	_, err := NewSerialReader(port).Read()
	assert.ErrorContains(t, err, "write request")

	port = newFakePort("")
	port.readErr = errors.New("io error")
	_, err = NewSerialReader(port).Read()
	assert.ErrorContains(t, err, "read reply")
}

func TestSerialReaderClose(t *testing.T) {
	port := newFakePort("")
	require.NoError(t, NewSerialReader(port).Close())
	assert.True(t, port.closed)
}

func TestPortOptionsSerialMode(t *testing.T) {
	opts := DefaultPortOptions()
	mode := opts.SerialMode()

	assert.Equal(t, 115200, mode.BaudRate)
	assert.Equal(t, 8, mode.DataBits)
	assert.Equal(t, serial.NoParity, mode.Parity)
	assert.Equal(t, serial.OneStopBit, mode.StopBits)
}

func TestFakeReader(t *testing.T) {
	f := NewFakeReader(1, 2)
	for _, want := range []int{1, 2, 2} {
		v, err := f.Read()
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
	assert.Equal(t, 3, f.Reads)

	f.ReadError = errors.New("boom")
	_, err := f.Read()
	assert.Error(t, err)
	assert.Equal(t, 4, f.Reads)
}
