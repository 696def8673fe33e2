package stled316s

// Command byte layout: b6 selects read/write, b5 fixed/incrementing address,
// b4..b3 the page and b2..b0 the register address within the page.
const (
	cmdDisplayOn  byte = 0x0D
	cmdDisplayOff byte = 0x0E

	dataWrite byte = 0x00
	dataRead  byte = 0x40
	addrInc   byte = 0x00
	addrFixed byte = 0x20

	pageDigit  byte = 0x00
	pageLED    byte = 0x08
	pageConf1  byte = 0x10
	pageLEDBrt byte = 0x18
	pageRead   byte = 0x08

	regLEDData  byte = 0x00
	regKeyData1 byte = 0x01
	regKeyData2 byte = 0x02

	// Per digit brightness taken from the brightness registers.
	confBrtVariable byte = 0x00
)

// command builds a command byte.
func command(mode, addressing, page, reg byte) byte {
	return mode | addressing | page | reg&0x07
}
