package sink

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.bug.st/serial"

	"libdb.so/bloclock/ledserial"
)

// Serial drives an LED controller board speaking the ledserial protocol.
type Serial struct {
	port    io.ReadWriteCloser
	logger  *slog.Logger
	numLEDs int

	mu       sync.Mutex
	panicked atomic.Bool
	closed   atomic.Bool
	done     chan struct{}
}

var _ Sink = (*Serial)(nil)

// OpenSerial opens the serial device and initializes a controller driving
// numLEDs LEDs.
func OpenSerial(device string, baud, numLEDs int, logger *slog.Logger) (*Serial, error) {
	port, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open serial port")
	}

	if err := port.SetReadTimeout(serial.NoTimeout); err != nil {
		port.Close()
		return nil, errors.Wrap(err, "failed to reset read timeout")
	}

	// NewSerial closes the port on failure.
	return NewSerial(port, numLEDs, logger)
}

// NewSerial initializes a controller connected through port. NewSerial takes
// ownership of port: it is closed by Close, or before returning an error.
func NewSerial(port io.ReadWriteCloser, numLEDs int, logger *slog.Logger) (*Serial, error) {
	if numLEDs <= 0 || numLEDs > ledserial.MaxMessageLength {
		port.Close()
		return nil, errors.Errorf("invalid number of LEDs %d", numLEDs)
	}

	s := &Serial{
		port:    port,
		logger:  logger,
		numLEDs: numLEDs,
		done:    make(chan struct{}),
	}
	go s.readPackets()

	s.logger.Debug("sending initialize packet", "leds", numLEDs)
	if err := s.writePacket(ledserial.InitializePacket{NumLEDs: uint16(numLEDs)}); err != nil {
		s.Close()
		return nil, errors.Wrap(err, "failed to initialize LEDs")
	}

	return s, nil
}

// Send implements Sink. offset must be a multiple of 3.
func (s *Serial) Send(offset int, pix []byte) error {
	if s.panicked.Load() {
		return errors.New("controller panicked")
	}
	if offset%3 != 0 || len(pix)%3 != 0 {
		return errors.Errorf("offset %d and length %d must be whole LEDs", offset, len(pix))
	}
	if offset/3+len(pix)/3 > s.numLEDs {
		return errors.Errorf("frame of %d LEDs at %d overflows %d LEDs", len(pix)/3, offset/3, s.numLEDs)
	}

	return s.writePacket(ledserial.SetPacket{
		Offset: uint16(offset / 3),
		Pix:    pix,
	})
}

// Close clears the LEDs and closes the port.
func (s *Serial) Close() error {
	if s.closed.Swap(true) {
		return ErrClosed
	}

	if !s.panicked.Load() {
		if err := s.writePacket(ledserial.ClearPacket{}); err != nil {
			s.logger.Debug("failed to clear LEDs", "error", err)
		}
	}

	err := s.port.Close()
	<-s.done
	if err != nil {
		return errors.Wrap(err, "failed to close serial port")
	}
	return nil
}

func (s *Serial) writePacket(p ledserial.IncomingPacket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ledserial.WriteIncomingPacket(s.port, p); err != nil {
		return errors.Wrapf(err, "failed to write %s packet", p.Type())
	}
	return nil
}

func (s *Serial) readPackets() {
	defer close(s.done)

	for {
		p, err := ledserial.ReadOutgoingPacket(s.port)
		if err != nil {
			if s.closed.Load() {
				return
			}
			// A short read indicates a timeout. This is expected.
			if errors.Is(err, io.EOF) {
				continue
			}
			s.logger.Error(
				"failed to read packet from controller",
				"error", err)
			return
		}

		switch p := p.(type) {
		case ledserial.AckPacket:
			s.logger.Debug(
				"received ack packet from controller",
				"acked_for", p.IncomingPacketType)

		case ledserial.ErrorPacket:
			s.logger.Warn(
				"received error packet from controller",
				"message", p.Message)

		case ledserial.PanicPacket:
			s.logger.Error(
				"controller unrecoverably panicked",
				"message", p.Message)
			s.panicked.Store(true)

		case ledserial.LogPacket:
			s.logger.Info(
				"received log packet from controller",
				"message", p.Message)
		}
	}
}
