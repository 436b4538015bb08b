package device

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/hdt/pkg/domain"
	"go.bug.st/serial"
)

const (
	// EndedToken is the acknowledgement sent by the device after a sequence.
	EndedToken = "ENDED;"
	// StartCommand starts the stimulus sequence.
	StartCommand = "START;"

	DefaultBaudRate     = 9600
	DefaultReadTimeout  = time.Second
	DefaultPollInterval = 100 * time.Millisecond

	// readChunk matches the length of the acknowledgement token.
	readChunk = len(EndedToken)
)

// DelayCommand renders the command that schedules the beep delay.
func DelayCommand(delayMs int) string {
	return fmt.Sprintf("DELAY%d;", delayMs)
}

// Serial talks to the recorder over a byte stream (normally a serial port).
type Serial struct {
	port         io.ReadWriteCloser
	pollInterval time.Duration
	maxWait      time.Duration
	logger       *slog.Logger
}

// Option configures a Serial device.
type Option func(*Serial)

// WithPollInterval sets the pause between two reads that returned no token.
func WithPollInterval(d time.Duration) Option {
	return func(s *Serial) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithMaxWait bounds the wait for the acknowledgement. Zero waits forever.
func WithMaxWait(d time.Duration) Option {
	return func(s *Serial) {
		s.maxWait = d
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Serial) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New wraps an already opened stream.
func New(port io.ReadWriteCloser, opts ...Option) *Serial {
	s := &Serial{
		port:         port,
		pollInterval: DefaultPollInterval,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens the named serial port (e.g. "COM2" or "/dev/ttyUSB0").
func Open(name string, baud int, readTimeout time.Duration, opts ...Option) (*Serial, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", name, err)
	}
	s := New(port, opts...)
	s.logger.Info("Serial port connected", "port", name, "baud", baud)
	return s, nil
}

// Trigger sends the delay and start commands and waits for "ENDED;".
func (s *Serial) Trigger(ctx context.Context, delayMs int) error {
	if err := s.write(DelayCommand(delayMs)); err != nil {
		return err
	}
	if err := s.write(StartCommand); err != nil {
		return err
	}
	s.logger.Debug("Tones starting", "delay_ms", delayMs)

	if err := s.awaitEnded(ctx); err != nil {
		return err
	}
	s.logger.Debug("Tones complete", "delay_ms", delayMs)
	return nil
}

func (s *Serial) write(cmd string) error {
	if _, err := io.WriteString(s.port, cmd); err != nil {
		return fmt.Errorf("failed to send %q: %w", cmd, err)
	}
	s.logger.Debug("Sent", "command", cmd)
	return nil
}

// awaitEnded polls the stream until the acknowledgement token shows up.
// Bytes accumulate across reads so a token split over two reads is still seen.
func (s *Serial) awaitEnded(ctx context.Context) error {
	token := []byte(EndedToken)
	chunk := make([]byte, readChunk)
	var pending []byte
	start := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := s.port.Read(chunk)
		if n > 0 {
			pending = append(pending, chunk[:n]...)
			if bytes.Contains(pending, token) {
				return nil
			}
			// Keep only a tail that could still begin the token.
			if keep := len(token) - 1; len(pending) > keep {
				pending = append(pending[:0], pending[len(pending)-keep:]...)
			}
		}
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read from device: %w", err)
		}

		if s.maxWait > 0 && time.Since(start) >= s.maxWait {
			return fmt.Errorf("%w: no %q after %s", domain.ErrHardwareTimeout, EndedToken, s.maxWait)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}
}

// Close releases the port.
func (s *Serial) Close() error {
	return s.port.Close()
}
