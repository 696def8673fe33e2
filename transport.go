package stled316s

// Transport carries frames to the controller.
//
// Write sends one frame (command byte followed by its data) as a single bus
// transaction: STB is asserted once before the first byte and released once
// after the last. Implementations must not retain frame.
type Transport interface {
	Write(frame []byte) error
}

// KeyReader is implemented by transports able to read controller registers.
//
// Read sends the read command for address and returns the byte clocked out by
// the controller, within one STB transaction.
type KeyReader interface {
	Read(address byte) (byte, error)
}

var (
	_ Transport = &SPI{}
	_ Transport = &BitBang{}
	_ KeyReader = &BitBang{}
)
