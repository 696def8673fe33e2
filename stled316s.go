// Package stled316s controls a STLED316S 7-segment LED controller with keyscan.
//
// The STLED316S drives up to 6 common anode digits plus 8 discrete LEDs with
// 8 brightness steps each, and scans a small key matrix. It is reached over a
// 3-wire serial bus (STB, CLK, DIO) compatible with SPI.
//
// See the examples for how to use this package.
package stled316s

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/bits"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/stled316s/segment"
)

// MaxDigits is the number of digit outputs of the controller.
const MaxDigits = 6

// MaxBrightness is the highest brightness level. Higher levels are clamped.
const MaxBrightness = 7

// Digit selects a digit. DigitAll addresses every digit of the display.
type Digit uint8

const (
	DigitAll Digit = iota
	Digit1
	Digit2
	Digit3
	Digit4
	Digit5
	Digit6
)

// LED selects a discrete LED. LEDAll addresses all eight.
type LED uint8

const (
	LEDAll LED = 0x00
	LED1   LED = 0x01
	LED2   LED = 0x02
	LED3   LED = 0x04
	LED4   LED = 0x08
	LED5   LED = 0x10
	LED6   LED = 0x20
	LED7   LED = 0x40
	LED8   LED = 0x80
)

var (
	// ErrDigitRange is returned for a digit beyond the display's digit count.
	ErrDigitRange = errors.New("stled316s: digit out of range")
	// ErrInvalidLED is returned for an LED value that is neither LEDAll nor a single LED.
	ErrInvalidLED = errors.New("stled316s: invalid LED")
	// ErrKeyscanUnsupported is returned by Keys when the transport cannot read registers.
	ErrKeyscanUnsupported = errors.New("stled316s: transport cannot read keyscan data")
)

// Opts is the configuration for the STLED316S display.
type Opts struct {
	// Number of digits wired (1 to 6, modules ship with 4 or 6)
	Digits int

	// Brightness applied to digits and LEDs by Begin, and to digits by Clear (0-7)
	Brightness uint8

	// Segment wiring (optional, nil uses segment.Default and its fixed table)
	Mapping *segment.Mapping

	// Frame tracing at debug level (optional)
	Logger *slog.Logger
}

// DefaultOpts is used by New when opts is nil.
var DefaultOpts = Opts{Digits: 6, Brightness: 2}

// Dev is the device handle for the STLED316S.
type Dev struct {
	mu  sync.Mutex
	t   Transport
	log *slog.Logger

	// Immutable after construction
	digits     int
	brightness uint8

	// Encoding, replaced by BeginMapping
	mapping segment.Mapping
	table   [16]byte

	// buf[0] is the digit page command, buf[1:digits+1] the digit patterns.
	buf [MaxDigits + 1]byte

	// Two 3-bit levels per byte, odd digit or LED in the low nibble.
	digBrt [3]byte
	ledBrt [4]byte

	// Last LED state written to the controller.
	leds byte
}

// New creates a device on t and initializes it with Begin, or BeginMapping
// when opts.Mapping is set.
//
// opts can be nil to use DefaultOpts.
func New(t Transport, opts *Opts) (*Dev, error) {
	if t == nil {
		return nil, errors.New("stled316s: transport is required")
	}
	if opts == nil {
		o := DefaultOpts
		opts = &o
	}
	if opts.Digits < 1 || opts.Digits > MaxDigits {
		return nil, errors.New("stled316s: digits must be between 1 and 6")
	}

	d := &Dev{
		t:          t,
		log:        opts.Logger,
		digits:     opts.Digits,
		brightness: clampLevel(opts.Brightness),
		mapping:    segment.Default,
		table:      segment.HexTable(),
	}
	if d.log == nil {
		d.log = slog.New(slog.DiscardHandler)
	}

	var err error
	if opts.Mapping != nil {
		err = d.BeginMapping(*opts.Mapping)
	} else {
		err = d.Begin()
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// NewSPI creates a device on a hardware SPI port. See NewSPITransport for stb.
func NewSPI(p spi.Port, stb gpio.PinOut, opts *Opts) (*Dev, error) {
	t, err := NewSPITransport(p, stb, nil)
	if err != nil {
		return nil, err
	}
	return New(t, opts)
}

// NewBitBang creates a device on three GPIO lines. Only this variant supports
// Keys.
func NewBitBang(stb, clk, dio gpio.PinIO, opts *Opts) (*Dev, error) {
	t, err := NewBitBangTransport(stb, clk, dio, nil)
	if err != nil {
		return nil, err
	}
	return New(t, opts)
}

// Begin puts the controller in its default state: configured brightness on
// all digits and LEDs, blank digits, display on.
func (d *Dev) Begin() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.begin()
}

// BeginMapping is Begin for displays wired differently than segment.Default.
// Subsequent digit encodings and decimal points use m.
func (d *Dev) BeginMapping(m segment.Mapping) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mapping = m
	d.table = m.Table()
	return d.begin()
}

func (d *Dev) begin() error {
	d.buf[0] = command(dataWrite, addrInc, pageDigit, 0)
	if err := d.setBrightness(DigitAll, d.brightness); err != nil {
		return err
	}
	if err := d.setLEDBrightness(LEDAll, d.brightness); err != nil {
		return err
	}
	if err := d.clear(); err != nil {
		return err
	}
	return d.send([]byte{cmdDisplayOn})
}

// DisplayOn turns the display on.
func (d *Dev) DisplayOn() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.send([]byte{cmdDisplayOn})
}

// DisplayOff turns the display off. Registers keep their content.
func (d *Dev) DisplayOff() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.send([]byte{cmdDisplayOff})
}

// SetBrightness sets the brightness of one digit, or of every digit with
// DigitAll (one write per digit). Levels above 7 are clamped.
func (d *Dev) SetBrightness(dg Digit, level uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setBrightness(dg, level)
}

func (d *Dev) setBrightness(dg Digit, level uint8) error {
	level = clampLevel(level)
	if dg == DigitAll {
		for i := Digit1; int(i) <= d.digits; i++ {
			if err := d.setBrightness(i, level); err != nil {
				return err
			}
		}
		return nil
	}
	if int(dg) > d.digits {
		return ErrDigitRange
	}
	i := int(dg) - 1
	d.digBrt[i/2] = setNibble(d.digBrt[i/2], i%2 == 1, level)
	return d.send(d.brightnessFrame())
}

func (d *Dev) brightnessFrame() []byte {
	return []byte{
		command(dataWrite, addrInc, pageConf1, 0),
		confBrtVariable | byte(d.digits-1),
		d.digBrt[0], d.digBrt[1], d.digBrt[2],
	}
}

// Clear blanks every digit, decimal points included, and restores the
// configured digit brightness.
func (d *Dev) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clear()
}

func (d *Dev) clear() error {
	for i := 1; i <= d.digits; i++ {
		d.buf[i] = 0
	}
	for i := 0; i < d.digits; i++ {
		d.digBrt[i/2] = setNibble(d.digBrt[i/2], i%2 == 1, d.brightness)
	}
	if err := d.flush(); err != nil {
		return err
	}
	return d.send(d.brightnessFrame())
}

// SetRaw shows pattern on one digit, or on every digit with DigitAll.
// Bit n of pattern drives output SEG(n+1); the encoding table is not used.
func (d *Dev) SetRaw(dg Digit, pattern byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if int(dg) > d.digits {
		return ErrDigitRange
	}
	if dg == DigitAll {
		for i := 1; i <= d.digits; i++ {
			d.buf[i] = pattern
		}
	} else {
		d.buf[dg] = pattern
	}
	return d.flush()
}

// Write shows raw patterns on every digit, patterns[0] on Digit1.
// The length of patterns must match the digit count.
func (d *Dev) Write(patterns []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(patterns) != d.digits {
		return 0, errors.New("stled316s: invalid buffer size")
	}
	copy(d.buf[1:], patterns)
	if err := d.flush(); err != nil {
		return 0, err
	}
	return len(patterns), nil
}

// WriteUdec shows v in decimal, right aligned with leading zeros blanked.
// Only the least significant digits that fit are shown. Decimal points are
// kept.
func (d *Dev) WriteUdec(v uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := d.digits; i >= 1; i-- {
		dp := d.buf[i] & d.mapping.DP
		if v == 0 && i != d.digits {
			d.buf[i] = dp
			continue
		}
		d.buf[i] = d.table[v%10] | dp
		v /= 10
	}
	return d.flush()
}

// WriteHex shows v in hexadecimal, one nibble per digit with the least
// significant nibble on the last digit. Nibbles that do not fit are dropped.
// Decimal points are kept.
func (d *Dev) WriteHex(v uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := d.digits; i >= 1; i-- {
		d.buf[i] = d.table[v&0x0F] | d.buf[i]&d.mapping.DP
		v >>= 4
	}
	return d.flush()
}

// WriteString shows s left aligned. A '.' lights the decimal point of the
// preceding character; runes without a glyph are blank and characters that do
// not fit are dropped. Digits past the end of s are blanked.
func (d *Dev) WriteString(s string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	patterns := make([]byte, 0, d.digits)
	dotted := true
	for _, r := range s {
		if r == '.' && !dotted {
			patterns[len(patterns)-1] |= d.mapping.DP
			dotted = true
			continue
		}
		if len(patterns) == d.digits {
			break
		}
		p, _ := d.mapping.Rune(r)
		if r == '.' {
			p = d.mapping.DP
		}
		patterns = append(patterns, p)
		dotted = r == '.'
	}
	for i := 1; i <= d.digits; i++ {
		d.buf[i] = 0
		if i <= len(patterns) {
			d.buf[i] = patterns[i-1]
		}
	}
	return d.flush()
}

// SetDP lights or clears the decimal point of one digit, or of every digit
// with DigitAll. Other segments are left untouched.
func (d *Dev) SetDP(dg Digit, on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if int(dg) > d.digits {
		return ErrDigitRange
	}
	first, last := int(dg), int(dg)
	if dg == DigitAll {
		first, last = 1, d.digits
	}
	for i := first; i <= last; i++ {
		if on {
			d.buf[i] |= d.mapping.DP
		} else {
			d.buf[i] &^= d.mapping.DP
		}
	}
	return d.flush()
}

// SetLEDBrightness sets the brightness of one LED, or of every LED with
// LEDAll (one write per LED). Levels above 7 are clamped.
func (d *Dev) SetLEDBrightness(l LED, level uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setLEDBrightness(l, level)
}

func (d *Dev) setLEDBrightness(l LED, level uint8) error {
	level = clampLevel(level)
	if l == LEDAll {
		for b := LED1; b != 0; b <<= 1 {
			if err := d.setLEDBrightness(b, level); err != nil {
				return err
			}
		}
		return nil
	}
	if bits.OnesCount8(uint8(l)) != 1 {
		return ErrInvalidLED
	}
	i := bits.TrailingZeros8(uint8(l))
	d.ledBrt[i/2] = setNibble(d.ledBrt[i/2], i%2 == 1, level)
	return d.send([]byte{
		command(dataWrite, addrInc, pageLEDBrt, 0),
		d.ledBrt[0], d.ledBrt[1], d.ledBrt[2], d.ledBrt[3],
	})
}

// SetLED turns one LED, or all of them with LEDAll, on or off. The other LEDs
// keep their last state.
func (d *Dev) SetLED(l LED, on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	state := d.leds
	switch {
	case l == LEDAll:
		for b := LED1; b != 0; b <<= 1 {
			state = applyLED(state, b, on)
		}
	case bits.OnesCount8(uint8(l)) == 1:
		state = applyLED(state, l, on)
	default:
		return ErrInvalidLED
	}

	if err := d.send([]byte{command(dataWrite, addrInc, pageLED, regLEDData), state}); err != nil {
		return err
	}
	d.leds = state
	return nil
}

// LEDs returns the LED state last written, one bit per LED.
func (d *Dev) LEDs() byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.leds
}

// Keys returns the keyscan bitmap: KEY_DATA1 in the low byte, KEY_DATA2 in
// the high byte.
func (d *Dev) Keys() (uint16, error) {
	r, ok := d.t.(KeyReader)
	if !ok {
		return 0, ErrKeyscanUnsupported
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	lo, err := r.Read(regKeyData1)
	if err != nil {
		return 0, fmt.Errorf("stled316s: read key data: %w", err)
	}
	hi, err := r.Read(regKeyData2)
	if err != nil {
		return 0, fmt.Errorf("stled316s: read key data: %w", err)
	}
	d.log.Debug("stled316s: keys", "data1", lo, "data2", hi)
	return uint16(hi)<<8 | uint16(lo), nil
}

// Digits returns the number of digits of the display.
func (d *Dev) Digits() int {
	return d.digits
}

// Halt turns the display off.
func (d *Dev) Halt() error {
	return d.DisplayOff()
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("stled316s.Dev{%d digits}", d.digits)
}

// flush sends the digit buffer.
func (d *Dev) flush() error {
	return d.send(d.buf[:d.digits+1])
}

// send writes one frame.
func (d *Dev) send(frame []byte) error {
	d.log.Debug("stled316s: write", "frame", hex.EncodeToString(frame))
	if err := d.t.Write(frame); err != nil {
		return fmt.Errorf("stled316s: write: %w", err)
	}
	return nil
}

func clampLevel(level uint8) uint8 {
	return min(level, MaxBrightness)
}

// setNibble stores a 3-bit level in the low or high nibble of b.
func setNibble(b byte, high bool, level uint8) byte {
	if high {
		return b&0x0F | level<<4
	}
	return b&0xF0 | level
}

func applyLED(state byte, l LED, on bool) byte {
	if on {
		return state | byte(l)
	}
	return state &^ byte(l)
}
