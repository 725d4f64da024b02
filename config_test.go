package bloclock

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libdb.so/bloclock/internal/clockface"
	"libdb.so/bloclock/internal/layout"
	"libdb.so/bloclock/internal/led"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 40, cfg.FPS)
	assert.Equal(t, 23*60, cfg.Bedtime.Minutes())
	assert.Equal(t, ArtNetOutput, cfg.Output.Kind)
	assert.Equal(t, "192.168.2.5", cfg.Output.Address)
	assert.Equal(t, 135, cfg.NumLEDs())
	assert.False(t, cfg.Calendar.Enabled())
}

func TestParseConfig(t *testing.T) {
	const doc = `
fps = 30
bedtime = "22:30"
mode = "countdown"
fixed_time = "23:33"

[output]
kind = "serial"
device = "/dev/ttyACM0"
offset = 6

[calendar]
credentials = "credentials.json"
interval = "1m"

[palette]
now = "#ff0000"

[palette.event_colors]
"11" = "#00ff00"

[render]
night_row = 2
`

	cfg, err := ParseConfig(strings.NewReader(doc))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 30, cfg.FPS)
	assert.Equal(t, 22*60+30, cfg.Bedtime.Minutes())
	assert.Equal(t, clockface.Countdown, cfg.Mode)
	require.NotNil(t, cfg.FixedTime)
	assert.Equal(t, 23*60+33, cfg.FixedTime.Minutes())

	assert.Equal(t, SerialOutput, cfg.Output.Kind)
	assert.Equal(t, "/dev/ttyACM0", cfg.Output.Device)
	assert.Equal(t, 6, cfg.Output.Offset)
	assert.Equal(t, 115200, cfg.Output.Baud, "default kept")

	assert.True(t, cfg.Calendar.Enabled())
	assert.Equal(t, TOMLDuration(time.Minute), cfg.Calendar.Interval)
	assert.Equal(t, "token.json", cfg.Calendar.Token, "default kept")

	assert.Equal(t, led.RGB(255, 0, 0), cfg.Palette.Now)
	assert.Equal(t, clockface.DefaultPalette().Upcoming, cfg.Palette.Upcoming, "default kept")
	assert.Equal(t, led.RGB(0, 255, 0), cfg.Palette.EventColors["11"])

	assert.Equal(t, 2, cfg.Render.NightRow)
	assert.Equal(t, clockface.DefaultOptions().PulseRate, cfg.Render.PulseRate, "default kept")
}

func TestParseConfigEmpty(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(""))
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, &def, cfg)
}

func TestParseConfigErrors(t *testing.T) {
	docs := []string{
		`bedtime = "25:00"`,
		`mode = "disco"`,
		`[palette]
now = "red"`,
		`[calendar]
interval = "soon"`,
	}
	for _, doc := range docs {
		_, err := ParseConfig(strings.NewReader(doc))
		assert.Error(t, err, "%s", doc)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no fps", func(c *Config) { c.FPS = 0 }},
		{"empty panel", func(c *Config) { c.Panel.Width = 0 }},
		{"bad table", func(c *Config) { c.Panel.Table = make([]int, 135) }},
		{"night row", func(c *Config) { c.Render.NightRow = 9 }},
		{"breathe period", func(c *Config) { c.Render.BreathePeriod = 0 }},
		{"pulse rate", func(c *Config) { c.Render.PulseRate = -1 }},
		{"negative offset", func(c *Config) { c.Output.Offset = -3 }},
		{"universe overflow", func(c *Config) { c.Output.Offset = 200 }},
		{"no address", func(c *Config) { c.Output.Address = "" }},
		{"no device", func(c *Config) { c.Output.Kind = SerialOutput }},
		{"unaligned serial offset", func(c *Config) {
			c.Output.Kind = SerialOutput
			c.Output.Device = "/dev/ttyUSB0"
			c.Output.Offset = 1
		}},
		{"unaligned spi offset", func(c *Config) {
			c.Output.Kind = SPIOutput
			c.Output.Offset = 1
		}},
		{"unknown output", func(c *Config) { c.Output.Kind = "dmx" }},
		{"calendar interval", func(c *Config) {
			c.Calendar.Credentials = "credentials.json"
			c.Calendar.Interval = 0
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := DefaultConfig()
			test.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestTOMLDuration(t *testing.T) {
	var d TOMLDuration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, TOMLDuration(90*time.Second), d)

	b, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(b))
}

func TestConfigMapperTables(t *testing.T) {
	cfg := DefaultConfig()
	m, err := cfg.Mapper()
	require.NoError(t, err)
	for i, p := range layout.Panel15x9 {
		require.Equal(t, p, m.Index(i%15, i/15), "LED %d", i)
	}

	cfg.Panel.Width, cfg.Panel.Height = 4, 3
	m, err = cfg.Mapper()
	require.NoError(t, err)
	for i, p := range layout.Serpentine(4, 3) {
		require.Equal(t, p, m.Index(i%4, i/4), "LED %d", i)
	}

	cfg.Panel.Table = layout.Table{11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0}
	m, err = cfg.Mapper()
	require.NoError(t, err)
	assert.Equal(t, 11, m.Index(0, 0))
}

func TestConfigValidateSPIOffset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.Kind = SPIOutput
	cfg.Output.Offset = 3
	assert.NoError(t, cfg.Validate())
}
