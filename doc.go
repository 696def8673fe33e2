// Package stled316s controls a STLED316S 7-segment LED controller with keyscan.
//
// The STLED316S drives up to 6 digits of 8 segments (common anode), 8 discrete
// LEDs on its DIG1_LED output, and reads a key matrix. Each digit and each LED
// has its own brightness level (0-7).
//
// # Hardware Connection
//
// The controller uses a 3-wire bus:
//
//	Module Pin → System Pin
//	GND        → GND
//	VCC        → 5V (3.3V logic levels are accepted)
//	STB        → SPI CS or any GPIO
//	CLK        → SPI Clock (SCLK) or any GPIO
//	DIN/DIO    → SPI Data (MOSI) or any GPIO
//
// # Transports
//
// Two transports are available:
//
// SPI uses a hardware SPI port. It is fast but write only: keyscan data can not
// be read back. Bytes are bit mirrored in software since the controller expects
// the least significant bit first.
//
//	p, _ := spireg.Open("")
//	dev, _ := stled316s.NewSPI(p, nil, nil)
//
// BitBang drives three GPIOs and supports reads:
//
//	dev, _ := stled316s.NewBitBang(
//		gpioreg.ByName("GPIO8"),  // STB
//		gpioreg.ByName("GPIO11"), // CLK
//		gpioreg.ByName("GPIO10"), // DIO
//		&stled316s.Opts{Digits: 4, Brightness: 3},
//	)
//	keys, _ := dev.Keys()
//
// Any type implementing Transport, and optionally KeyReader, can be passed to
// New.
//
// # Showing Numbers
//
//	dev.WriteUdec(1234)  // right aligned, leading zeros blanked
//	dev.WriteHex(0xBEEF) // one nibble per digit
//	dev.SetDP(stled316s.Digit2, true)
//	dev.WriteString("HELP")
//
// Values wider than the display are truncated to their least significant
// digits.
//
// # Raw Segments
//
// SetRaw and Write bypass the encoding table. Bit n of a pattern drives output
// SEG(n+1); see package segment for the bit names.
//
// # Custom Wiring
//
// Modules wired differently than segment.Default set Opts.Mapping:
//
//	m := segment.Mapping{
//		A: segment.SEG1, B: segment.SEG2, C: segment.SEG3, D: segment.SEG4,
//		E: segment.SEG5, F: segment.SEG6, G: segment.SEG7, DP: segment.SEG8,
//	}
//	dev, _ := stled316s.New(t, &stled316s.Opts{Digits: 6, Mapping: &m})
//
// # Brightness and LEDs
//
//	dev.SetBrightness(stled316s.DigitAll, 5)
//	dev.SetLEDBrightness(stled316s.LED3, 7)
//	dev.SetLED(stled316s.LED3, true)
//
// Levels above 7 are clamped. SetLED only changes the LEDs it addresses.
//
// # Errors
//
// The wire protocol has no acknowledgment: a disconnected module is not
// detected. Errors only report GPIO or SPI failures from the host, and digits
// or LEDs outside the display.
//
// # Datasheet
//
// https://www.st.com/resource/en/datasheet/stled316s.pdf
package stled316s
