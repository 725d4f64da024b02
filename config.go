package bloclock

import (
	"encoding"
	"fmt"
	"io"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/physic"

	"libdb.so/bloclock/internal/clockface"
	"libdb.so/bloclock/internal/layout"
	"libdb.so/bloclock/internal/sink"
)

// Config is the configuration for the clock.
type Config struct {
	// FPS is the number of frames rendered per second.
	FPS int `toml:"fps"`
	// Bedtime starts the 8 hour sleep window, as "HH:MM".
	Bedtime clockface.ClockTime `toml:"bedtime"`
	// Mode is the mode the clock starts in.
	Mode clockface.Mode `toml:"mode"`
	// FixedTime, if set, freezes the clock at the given time of day.
	FixedTime *clockface.ClockTime `toml:"fixed_time,omitempty"`

	Panel    PanelConfig       `toml:"panel"`
	Output   OutputConfig      `toml:"output"`
	Calendar CalendarConfig    `toml:"calendar"`
	Palette  clockface.Palette `toml:"palette"`
	Render   clockface.Options `toml:"render"`
}

// PanelConfig describes the LED panel.
type PanelConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
	// Table maps each logical index to its position on the strip. If empty,
	// the 15×9 panel wiring or a serpentine layout is assumed.
	Table layout.Table `toml:"table,omitempty"`
}

// OutputKind is the kind of sink frames are sent to.
type OutputKind string

const (
	// ArtNetOutput sends ArtDmx packets over UDP.
	ArtNetOutput OutputKind = "artnet"
	// SerialOutput drives a controller board over a serial port.
	SerialOutput OutputKind = "serial"
	// SPIOutput drives the strip from an SPI port of the host.
	SPIOutput OutputKind = "spi"
	// DiscardOutput drops every frame.
	DiscardOutput OutputKind = "discard"
)

// OutputConfig is the configuration for the output sink.
type OutputConfig struct {
	Kind OutputKind `toml:"kind"`
	// Offset is the 0-based byte position where the pixel data starts. For
	// Art-Net, this is the DMX channel minus one.
	Offset int `toml:"offset"`

	// Address is the Art-Net node, with an optional port.
	Address string `toml:"address"`
	// Universe is the Art-Net universe.
	Universe int `toml:"universe"`

	// Device is the path to the serial device. This is usually /dev/ttyUSB0
	// or /dev/ttyACM0.
	Device string `toml:"device"`
	// Baud is the baud rate for the serial connection.
	Baud int `toml:"baud"`

	// SPIPort is the SPI port name. An empty name picks the first port.
	SPIPort string `toml:"spi_port"`
	// SPIKHz is the SPI clock in kHz.
	SPIKHz int64 `toml:"spi_khz"`
}

// CalendarConfig is the configuration for the Google Calendar source.
type CalendarConfig struct {
	// Credentials is the OAuth client credentials JSON file. The calendar is
	// disabled if empty.
	Credentials string `toml:"credentials"`
	// Token is where the OAuth token is stored.
	Token string `toml:"token"`
	// ID is the calendar to read.
	ID string `toml:"id"`
	// MaxResults caps the number of events fetched per poll.
	MaxResults int64 `toml:"max_results"`
	// Interval is the time between two polls.
	Interval TOMLDuration `toml:"interval"`
	// Timeout bounds a single poll.
	Timeout TOMLDuration `toml:"timeout"`
}

// Enabled returns true if a calendar is configured.
func (c CalendarConfig) Enabled() bool {
	return c.Credentials != ""
}

// DefaultConfig returns the configuration of the 15×9 clock sending Art-Net
// to its node.
func DefaultConfig() Config {
	return Config{
		FPS:     40,
		Bedtime: clockface.ClockTime(23 * 60),
		Mode:    clockface.Night,
		Panel: PanelConfig{
			Width:  15,
			Height: 9,
		},
		Output: OutputConfig{
			Kind:     ArtNetOutput,
			Address:  "192.168.2.5",
			Universe: 0,
			Offset:   0,
			Baud:     115200,
			SPIKHz:   int64(sink.DefaultSPIFrequency / physic.KiloHertz),
		},
		Calendar: CalendarConfig{
			Token:      "token.json",
			ID:         "primary",
			MaxResults: 40,
			Interval:   TOMLDuration(10 * time.Second),
			Timeout:    TOMLDuration(10 * time.Second),
		},
		Palette: clockface.DefaultPalette(),
		Render:  clockface.DefaultOptions(),
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.FPS <= 0 || c.FPS > 1000 {
		return fmt.Errorf("fps %d out of range", c.FPS)
	}

	if _, err := c.Mapper(); err != nil {
		return errors.Wrap(err, "invalid panel")
	}

	if c.Render.NightRow < 0 || c.Render.NightRow >= c.Panel.Height {
		return fmt.Errorf("night row %d is outside of the panel", c.Render.NightRow)
	}
	if c.Render.BreathePeriod <= 0 {
		return errors.New("breathe period must be positive")
	}
	if c.Render.PulseRate <= 0 {
		return errors.New("pulse rate must be positive")
	}

	if c.Output.Offset < 0 {
		return errors.New("output offset must not be negative")
	}

	frameSize := 3 * c.Panel.Width * c.Panel.Height
	switch c.Output.Kind {
	case ArtNetOutput:
		if c.Output.Address == "" {
			return errors.New("artnet output needs an address")
		}
		if c.Output.Offset+frameSize > sink.UniverseSize {
			return fmt.Errorf("%d channels at offset %d do not fit into a universe", frameSize, c.Output.Offset)
		}
	case SerialOutput:
		if c.Output.Device == "" {
			return errors.New("serial output needs a device")
		}
		if c.Output.Offset%3 != 0 {
			return errors.New("serial output offset must be a multiple of 3")
		}
	case SPIOutput:
		if c.Output.SPIKHz <= 0 {
			return errors.New("spi output needs a clock")
		}
		if c.Output.Offset%3 != 0 {
			return errors.New("spi output offset must be a multiple of 3")
		}
	case DiscardOutput:
	default:
		return fmt.Errorf("unknown output kind %q", c.Output.Kind)
	}

	if c.Calendar.Enabled() {
		if c.Calendar.Token == "" {
			return errors.New("calendar needs a token file")
		}
		if c.Calendar.Interval <= 0 {
			return errors.New("calendar interval must be positive")
		}
	}

	return nil
}

// Mapper returns the topology mapper of the configured panel. Without a
// table, the 15×9 panel uses its published wiring and other sizes are assumed
// to be serpentine.
func (c *Config) Mapper() (*layout.Mapper, error) {
	table := c.Panel.Table
	if len(table) == 0 {
		if c.Panel.Width == 15 && c.Panel.Height == 9 {
			table = layout.Panel15x9
		} else {
			table = layout.Serpentine(c.Panel.Width, c.Panel.Height)
		}
	}
	return layout.NewMapper(c.Panel.Width, c.Panel.Height, table)
}

// NumLEDs returns the number of LEDs on the panel.
func (c *Config) NumLEDs() int {
	return c.Panel.Width * c.Panel.Height
}

// TOMLDuration is a duration that can be parsed from TOML.
type TOMLDuration time.Duration

var (
	_ encoding.TextUnmarshaler = (*TOMLDuration)(nil)
	_ encoding.TextMarshaler   = (*TOMLDuration)(nil)
)

func (d *TOMLDuration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = TOMLDuration(duration)
	return nil
}

func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// ParseConfig parses a configuration from a reader. Keys missing from the
// file keep their DefaultConfig value.
func ParseConfig(r io.Reader) (*Config, error) {
	config := DefaultConfig()
	if err := toml.NewDecoder(r).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
