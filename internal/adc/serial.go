package adc

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"
)

// The bridge answers each request line with one decimal reading and '\n'.
const (
	requestLine = "R\n"
	maxLineLen  = 16
)

// ErrTimeout is returned when the bridge does not answer in time.
var ErrTimeout = errors.New("adc: read timeout")

// PortOptions configures the serial link to the bridge.
type PortOptions struct {
	BaudRate    int
	ReadTimeout time.Duration
}

// DefaultPortOptions matches the bridge firmware defaults.
func DefaultPortOptions() PortOptions {
	return PortOptions{
		BaudRate:    115200,
		ReadTimeout: 100 * time.Millisecond,
	}
}

// SerialMode converts the options into the structure go.bug.st/serial needs.
func (o PortOptions) SerialMode() *serial.Mode {
	return &serial.Mode{
		BaudRate: o.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// inputResetter is implemented by serial.Port.
type inputResetter interface {
	ResetInputBuffer() error
}

// SerialReader polls a microcontroller ADC bridge over a serial port.
type SerialReader struct {
	port io.ReadWriteCloser

	// late is set after a timeout: the bridge may still answer that
	// request, leaving one reply ahead of the next request.
	late bool
}

// OpenSerial opens the bridge at path.
func OpenSerial(path string, opts PortOptions) (*SerialReader, error) {
	port, err := serial.Open(path, opts.SerialMode())
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", path, err)
	}
	if err := port.SetReadTimeout(opts.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	return NewSerialReader(port), nil
}

// NewSerialReader wraps an already open port. Reads on port must return
// (0, nil) on timeout, as go.bug.st/serial does. If port can reset its
// input buffer, stale bytes are flushed before every request.
func NewSerialReader(port io.ReadWriteCloser) *SerialReader {
	return &SerialReader{port: port}
}

// Read requests one reading and parses the reply.
func (s *SerialReader) Read() (int, error) {
	if r, ok := s.port.(inputResetter); ok {
		if err := r.ResetInputBuffer(); err != nil {
			return 0, fmt.Errorf("reset input: %w", err)
		}
		s.late = false
	}
	if _, err := io.WriteString(s.port, requestLine); err != nil {
		return 0, fmt.Errorf("write request: %w", err)
	}

	line, err := s.readReply()
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			s.late = true
		}
		return 0, err
	}

	v, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("parse reading %q: %w", line, err)
	}
	return v, nil
}

// readReply returns the answer to the request just written. After a
// timeout the first line may be the late answer to the previous request;
// if a second line follows, the first is dropped. If none follows, the
// earlier request was never answered and the first line is current.
func (s *SerialReader) readReply() (string, error) {
	line, err := s.readLine()
	if err != nil || !s.late {
		return line, err
	}
	s.late = false
	next, err := s.readLine()
	switch {
	case errors.Is(err, ErrTimeout):
		return line, nil
	case err != nil:
		return "", err
	}
	return next, nil
}

func (s *SerialReader) readLine() (string, error) {
	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := s.port.Read(buf)
		if err != nil {
			return "", fmt.Errorf("read reply: %w", err)
		}
		if n == 0 {
			return "", ErrTimeout
		}
		if buf[0] == '\n' {
			return string(line), nil
		}
		line = append(line, buf[0])
		if len(line) > maxLineLen {
			return "", fmt.Errorf("reply too long: %q", line)
		}
	}
}

// Close closes the port.
func (s *SerialReader) Close() error {
	return s.port.Close()
}
