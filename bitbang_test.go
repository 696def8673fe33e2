package stled316s

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
)

// chip emulates the controller side of the 3-wire bus on top of gpiotest pins.
type chip struct {
	stb, clk, dio *chipPin

	regs map[byte]byte

	selected bool
	input    bool // DIO is an input on the host side
	frame    []byte
	cur      byte
	nbits    int
	out      byte // byte being clocked out to the host
	outBits  int

	frames  [][]byte
	sampled []gpio.Level // DIO at every rising CLK edge of a write
	selects int
	// Set when the host drove DIO after turning it around within a frame.
	overlap bool
	failOn  string
}

type chipPin struct {
	*gpiotest.Pin
	c *chip
}

func newChip() *chip {
	c := &chip{regs: map[byte]byte{}}
	c.stb = &chipPin{Pin: &gpiotest.Pin{N: "STB"}, c: c}
	c.clk = &chipPin{Pin: &gpiotest.Pin{N: "CLK"}, c: c}
	c.dio = &chipPin{Pin: &gpiotest.Pin{N: "DIO"}, c: c}
	return c
}

func (p *chipPin) Out(l gpio.Level) error {
	if p.c.failOn == p.N {
		return errors.New("pin stuck")
	}
	prev := p.Pin.Read()
	if err := p.Pin.Out(l); err != nil {
		return err
	}
	p.c.edge(p, prev, l)
	return nil
}

func (p *chipPin) In(pull gpio.Pull, edge gpio.Edge) error {
	if err := p.Pin.In(pull, edge); err != nil {
		return err
	}
	if p == p.c.dio {
		p.c.input = true
	}
	return nil
}

func (c *chip) edge(p *chipPin, prev, l gpio.Level) {
	switch p {
	case c.stb:
		if !l && prev {
			c.selected = true
			c.selects++
			c.frame = nil
			c.nbits, c.cur, c.outBits = 0, 0, 0
		} else if bool(l && !prev) && c.selected {
			c.selected = false
			c.frames = append(c.frames, c.frame)
		}
	case c.dio:
		if c.input {
			c.input = false
			if c.selected {
				c.overlap = true
			}
		}
	case c.clk:
		if !c.selected {
			return
		}
		if c.input {
			// The controller shifts its next bit out on the falling edge.
			if !l && prev {
				c.dio.Pin.L = gpio.Level(c.out&(1<<c.outBits) != 0)
				c.outBits++
			}
			return
		}
		if l && !prev {
			if c.dio.Pin.Read() {
				c.cur |= 1 << c.nbits
			}
			c.sampled = append(c.sampled, c.dio.Pin.Read())
			c.nbits++
			if c.nbits == 8 {
				c.frame = append(c.frame, c.cur)
				if c.cur&dataRead != 0 {
					c.out = c.regs[c.cur&0x07]
				}
				c.nbits, c.cur = 0, 0
			}
		}
	}
}

func newTestBitBang(t *testing.T) (*BitBang, *chip) {
	t.Helper()
	c := newChip()
	b, err := NewBitBangTransport(c.stb, c.clk, c.dio, &BitBangOpts{Freq: 10 * physic.MegaHertz})
	require.NoError(t, err)
	return b, c
}

func TestNewBitBangTransportIdleLevels(t *testing.T) {
	_, c := newTestBitBang(t)
	assert.Equal(t, gpio.High, c.stb.Read())
	assert.Equal(t, gpio.High, c.clk.Read())
	assert.Equal(t, gpio.Low, c.dio.Read())
	assert.Zero(t, c.selects)
}

func TestNewBitBangTransportMissingPin(t *testing.T) {
	c := newChip()
	_, err := NewBitBangTransport(c.stb, nil, c.dio, nil)
	assert.Error(t, err)
}

func TestBitBangDefaultFrequency(t *testing.T) {
	c := newChip()
	b, err := NewBitBangTransport(c.stb, c.clk, c.dio, nil)
	require.NoError(t, err)
	assert.Equal(t, (500 * physic.KiloHertz).Period()/2, b.half)
}

func TestBitBangWrite(t *testing.T) {
	b, c := newTestBitBang(t)
	frames := [][]byte{
		{cmdDisplayOn},
		{0x00, 0x77, 0x14, 0xB3, 0xB6, 0xD4, 0xE6},
		{0x10, 0x05, 0x27, 0x52, 0x02},
	}
	for _, f := range frames {
		require.NoError(t, b.Write(f))
	}
	assert.Equal(t, frames, c.frames)
	// Exactly one STB assertion per frame.
	assert.Equal(t, len(frames), c.selects)
	assert.Equal(t, gpio.High, c.stb.Read())
	assert.Equal(t, gpio.High, c.clk.Read())
}

func TestBitBangWriteLSBFirst(t *testing.T) {
	b, c := newTestBitBang(t)
	require.NoError(t, b.Write([]byte{0x01, 0x80}))
	want := []gpio.Level{
		gpio.High, gpio.Low, gpio.Low, gpio.Low, gpio.Low, gpio.Low, gpio.Low, gpio.Low,
		gpio.Low, gpio.Low, gpio.Low, gpio.Low, gpio.Low, gpio.Low, gpio.Low, gpio.High,
	}
	assert.Equal(t, want, c.sampled)
}

func TestBitBangRead(t *testing.T) {
	b, c := newTestBitBang(t)
	c.regs[regKeyData1] = 0xA5
	c.regs[regKeyData2] = 0x3C

	v, err := b.Read(regKeyData1)
	require.NoError(t, err)
	assert.Equal(t, byte(0xA5), v)

	v, err = b.Read(regKeyData2)
	require.NoError(t, err)
	assert.Equal(t, byte(0x3C), v)

	// Only the read command is shifted in; the data byte travels the other way.
	assert.Equal(t, [][]byte{{0x49}, {0x4A}}, c.frames)
	assert.Equal(t, 2, c.selects)
	assert.False(t, c.overlap, "DIO driven during the read phase")
	// DIO is an output again, idle low.
	assert.False(t, c.input)
	assert.Equal(t, gpio.Low, c.dio.Read())
}

func TestBitBangWriteErrorReleasesSTB(t *testing.T) {
	b, c := newTestBitBang(t)
	c.failOn = "DIO"
	assert.Error(t, b.Write([]byte{0x0D}))
	c.failOn = ""
	assert.Equal(t, gpio.High, c.stb.Read())
}

func TestNewBitBangKeys(t *testing.T) {
	c := newChip()
	c.regs[regKeyData1] = 0x01
	c.regs[regKeyData2] = 0x80
	dev, err := NewBitBang(c.stb, c.clk, c.dio, &Opts{Digits: 4, Brightness: 2})
	require.NoError(t, err)
	// Begin: 4 digit brightness, 8 LED brightness, clear (2), display on.
	assert.Len(t, c.frames, 15)

	keys, err := dev.Keys()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x8001), keys)

	require.NoError(t, dev.WriteHex(0x1234))
	assert.Equal(t, []byte{0x00, 0x14, 0xB3, 0xB6, 0xD4}, c.frames[len(c.frames)-1])
}
