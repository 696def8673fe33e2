package stled316s

import (
	"fmt"
	"math/bits"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// SPIOpts is the configuration of the SPI transport.
type SPIOpts struct {
	// Clock frequency (default: 100kHz, the controller supports up to 1MHz)
	Freq physic.Frequency
}

// SPI is a write only transport over a hardware SPI port.
//
// The controller expects the least significant bit first while SPI engines
// shift the most significant bit first, so every byte is mirrored before it
// is sent. Register reads are not supported; use BitBang for keyscan.
type SPI struct {
	mu  sync.Mutex
	c   spi.Conn
	stb gpio.PinOut // nil when the port drives chip select itself
}

// NewSPITransport connects to p.
//
// When stb is not nil the port is opened without chip select and stb is driven
// around every frame. Otherwise the port's own chip select frames each Tx.
func NewSPITransport(p spi.Port, stb gpio.PinOut, o *SPIOpts) (*SPI, error) {
	f := 100 * physic.KiloHertz
	if o != nil && o.Freq != 0 {
		f = o.Freq
	}

	// CLK idles high and data is latched on the rising edge.
	mode := spi.Mode3
	if stb != nil {
		mode |= spi.NoCS
		if err := stb.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("stled316s: failed to release STB: %w", err)
		}
	}

	c, err := p.Connect(f, mode, 8)
	if err != nil {
		return nil, fmt.Errorf("stled316s: %w", err)
	}
	return &SPI{c: c, stb: stb}, nil
}

// Write sends frame as one transaction.
func (s *SPI) Write(frame []byte) error {
	w := make([]byte, len(frame))
	for i, b := range frame {
		w[i] = Reverse(b)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stb == nil {
		return s.c.Tx(w, nil)
	}
	if err := s.stb.Out(gpio.Low); err != nil {
		return err
	}
	err := s.c.Tx(w, nil)
	if herr := s.stb.Out(gpio.High); err == nil {
		err = herr
	}
	return err
}

// String returns the underlying connection name.
func (s *SPI) String() string {
	return s.c.String()
}

// Reverse mirrors the bits of b: b7..b0 becomes b0..b7.
// Reverse(Reverse(b)) == b.
func Reverse(b byte) byte {
	return bits.Reverse8(b)
}
