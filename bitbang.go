package stled316s

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// BitBangOpts is the configuration of the bit-banged transport.
type BitBangOpts struct {
	// Clock frequency (default: 500kHz)
	Freq physic.Frequency
}

// stbSetup is the delay between STB edges and the first or last clock edge.
const stbSetup = 2 * time.Microsecond

// BitBang drives STB, CLK and DIO directly.
//
// DIO is bidirectional: it is an output while the command is shifted in and
// turns into an input for the data byte of a read. Timing relies on busy
// waits, nothing inside a transfer sleeps or yields.
type BitBang struct {
	mu   sync.Mutex
	stb  gpio.PinIO
	clk  gpio.PinIO
	dio  gpio.PinIO
	half time.Duration // half a clock period
}

// NewBitBangTransport returns a transport on the given pins and puts them in
// their idle state: STB high, CLK high, DIO low.
func NewBitBangTransport(stb, clk, dio gpio.PinIO, o *BitBangOpts) (*BitBang, error) {
	if stb == nil || clk == nil || dio == nil {
		return nil, errors.New("stled316s: STB, CLK and DIO pins are required")
	}
	f := 500 * physic.KiloHertz
	if o != nil && o.Freq != 0 {
		f = o.Freq
	}

	b := &BitBang{stb: stb, clk: clk, dio: dio, half: f.Period() / 2}
	for _, p := range []struct {
		pin gpio.PinIO
		l   gpio.Level
	}{{stb, gpio.High}, {clk, gpio.High}, {dio, gpio.Low}} {
		if err := p.pin.Out(p.l); err != nil {
			return nil, fmt.Errorf("stled316s: failed to set %s: %w", p.pin, err)
		}
	}
	return b, nil
}

// Write sends frame as one transaction, least significant bit first.
func (b *BitBang) Write(frame []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	err := b.acquire()
	for i := 0; err == nil && i < len(frame); i++ {
		err = b.shiftOut(frame[i])
	}
	if rerr := b.release(); err == nil {
		err = rerr
	}
	return err
}

// Read sends the read command for address then clocks one byte in from the
// controller. The write phase ends before DIO turns around.
func (b *BitBang) Read(address byte) (byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var v byte
	err := b.acquire()
	if err == nil {
		err = b.shiftOut(command(dataRead, addrInc, pageRead, address))
	}
	if err == nil {
		v, err = b.shiftIn()
	}
	if rerr := b.release(); err == nil {
		err = rerr
	}
	if oerr := b.dio.Out(gpio.Low); err == nil {
		err = oerr
	}
	return v, err
}

// String returns the pins used.
func (b *BitBang) String() string {
	return fmt.Sprintf("BitBang{STB:%s, CLK:%s, DIO:%s}", b.stb, b.clk, b.dio)
}

func (b *BitBang) acquire() error {
	if err := b.clk.Out(gpio.High); err != nil {
		return err
	}
	if err := b.stb.Out(gpio.Low); err != nil {
		return err
	}
	spin(stbSetup)
	return nil
}

func (b *BitBang) release() error {
	spin(stbSetup)
	return b.stb.Out(gpio.High)
}

func (b *BitBang) shiftOut(v byte) error {
	for j := 0; j < 8; j++ {
		if err := b.dio.Out(gpio.Level(v&(1<<j) != 0)); err != nil {
			return err
		}
		if err := b.clk.Out(gpio.Low); err != nil {
			return err
		}
		spin(b.half)
		if err := b.clk.Out(gpio.High); err != nil {
			return err
		}
		spin(b.half)
	}
	return nil
}

func (b *BitBang) shiftIn() (byte, error) {
	if err := b.dio.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return 0, err
	}
	var v byte
	for j := 0; j < 8; j++ {
		if err := b.clk.Out(gpio.Low); err != nil {
			return 0, err
		}
		spin(b.half)
		if err := b.clk.Out(gpio.High); err != nil {
			return 0, err
		}
		if b.dio.Read() == gpio.High {
			v |= 1 << j
		}
		spin(b.half)
	}
	return v, nil
}

// spin busy-waits for d.
func spin(d time.Duration) {
	for start := time.Now(); time.Since(start) < d; {
	}
}
