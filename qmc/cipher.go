// Package qmc decodes QQ Music files protected with the static cipher
// (.qmc0, .qmc3, .qmcflac, .qmcogg). These files have no header: every byte
// is audio XOR-ed with a mask addressed by its offset.
package qmc

const maskPeriod = 0x7FFF

// seedMap is walked back and forth, row by row, to produce the mask bytes.
var seedMap = [8][7]byte{
	{0x4a, 0xd6, 0xca, 0x90, 0x67, 0xf7, 0x52},
	{0x5e, 0x95, 0x23, 0x9f, 0x13, 0x11, 0x7e},
	{0x47, 0x74, 0x3d, 0x90, 0xaa, 0x3f, 0x51},
	{0xc6, 0x09, 0xd5, 0x9f, 0xfa, 0x66, 0xf9},
	{0xf3, 0xd6, 0xa1, 0x90, 0xa0, 0xf7, 0xf0},
	{0x1d, 0x95, 0xde, 0x9f, 0x84, 0x11, 0xf4},
	{0x0e, 0x74, 0xbb, 0x90, 0xbc, 0x3f, 0x92},
	{0x00, 0x09, 0x5b, 0x9f, 0x62, 0x66, 0xa1},
}

// staticBox maps (offset*offset + 27) mod 256 to the mask byte. Only the
// quadratic residues are ever addressed, the other entries stay zero.
var staticBox = buildStaticBox()

func buildStaticBox() (box [256]byte) {
	x, y, dx := -1, 8, 1
	for p := 0; p < len(box); p++ {
		var mask byte
		switch {
		case x < 0:
			dx, y, mask = 1, (8-y)%8, 0xc3
		case x > 6:
			dx, y, mask = -1, 7-y, 0xd8
		default:
			mask = seedMap[y][x]
		}

		x += dx
		box[(p*p+27)&0xff] = mask
	}

	return box
}

// Mask returns the mask byte for the given file offset.
func Mask(offset uint64) byte {
	if offset > maskPeriod {
		offset %= maskPeriod
	}
	return staticBox[(offset*offset+27)&0xff]
}

// StaticCipher is the offset addressed static QMC cipher. It holds no state
// and can be shared freely.
type StaticCipher struct{}

// XOR applies the mask to src starting at offset and writes the result to
// dst, which may alias src.
func (StaticCipher) XOR(offset uint64, dst, src []byte) int {
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}

	for k := 0; k < n; k++ {
		dst[k] = src[k] ^ Mask(offset+uint64(k))
	}

	return n
}
