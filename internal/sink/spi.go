package sink

import (
	stderrors "errors"
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

// DefaultSPIFrequency drives WS2812 strips through the SPI MOSI pin.
const DefaultSPIFrequency = 2500 * physic.KiloHertz

// strip is the part of nrzled.Dev used by SPI.
type strip interface {
	Write(pix []byte) (int, error)
	Halt() error
}

// SPI drives a WS2812 style strip wired to an SPI port.
type SPI struct {
	dev    strip
	closer func() error

	mu  sync.Mutex
	buf []byte
}

var _ Sink = (*SPI)(nil)

// OpenSPI opens the SPI port with the given name, or the first one if name
// is empty.
func OpenSPI(name string, numLEDs int, freq physic.Frequency) (*SPI, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize host drivers")
	}

	port, err := spireg.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open SPI port")
	}

	s, err := NewSPI(port, numLEDs, freq)
	if err != nil {
		port.Close()
		return nil, err
	}
	s.closer = port.Close
	return s, nil
}

// NewSPI drives numLEDs LEDs through an already opened port.
func NewSPI(port spi.Port, numLEDs int, freq physic.Frequency) (*SPI, error) {
	if freq == 0 {
		freq = DefaultSPIFrequency
	}

	dev, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: numLEDs,
		Channels:  3,
		Freq:      freq,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create nrzled device")
	}

	return &SPI{
		dev: dev,
		buf: make([]byte, 3*numLEDs),
	}, nil
}

// Send implements Sink. The full strip is rewritten on every call.
func (s *SPI) Send(offset int, pix []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if offset < 0 || offset+len(pix) > len(s.buf) {
		return errors.Errorf("%d bytes at offset %d overflow the strip", len(pix), offset)
	}

	copy(s.buf[offset:], pix)
	if _, err := s.dev.Write(s.buf); err != nil {
		return errors.Wrap(err, "failed to write to strip")
	}
	return nil
}

// Close turns the strip off and releases the port. The port is released even
// if the strip cannot be turned off.
func (s *SPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if err := s.dev.Halt(); err != nil {
		errs = append(errs, errors.Wrap(err, "failed to halt strip"))
	}
	if s.closer != nil {
		if err := s.closer(); err != nil {
			errs = append(errs, errors.Wrap(err, "failed to close SPI port"))
		}
	}
	return stderrors.Join(errs...)
}
