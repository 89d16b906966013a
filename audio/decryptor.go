package audio

import "io"

// Cipher is a keystream addressed by payload offset. *keystream.Table and
// qmc.StaticCipher implement it.
type Cipher interface {
	XOR(offset uint64, dst, src []byte) int
}

// Decrypt XORs src with the keystream starting at the given payload offset
// and writes the result to dst, which may alias src. The result does not
// depend on how a payload is split into calls.
func Decrypt(c Cipher, offset uint64, dst, src []byte) int {
	return c.XOR(offset, dst, src)
}

// Decryptor exposes the decrypted audio payload of a container as an
// io.ReaderAt. Positions are relative to the start of the payload. It holds no
// read position so concurrent ReadAt calls are safe as long as the underlying
// reader allows them.
type Decryptor struct {
	reader *io.SectionReader
	cipher Cipher
}

func NewDecryptor(r io.ReaderAt, offset, size int64, cipher Cipher) *Decryptor {
	return &Decryptor{io.NewSectionReader(r, offset, size), cipher}
}

func (d *Decryptor) ReadAt(p []byte, pos int64) (n int, err error) {
	n, err = d.reader.ReadAt(p, pos)
	if n > 0 {
		d.cipher.XOR(uint64(pos), p[:n], p[:n])
	}
	return n, err
}

// Size returns the length of the payload.
func (d *Decryptor) Size() int64 {
	return d.reader.Size()
}

// NewReader returns a sequential reader over the whole decrypted payload.
func (d *Decryptor) NewReader() io.ReadSeeker {
	return io.NewSectionReader(d, 0, d.Size())
}

// Head returns up to n decrypted bytes from the start of the payload.
func (d *Decryptor) Head(n int) ([]byte, error) {
	if int64(n) > d.Size() {
		n = int(d.Size())
	}

	buf := make([]byte, n)
	read, err := d.ReadAt(buf, 0)
	if err == io.EOF && read == n {
		err = nil
	}
	return buf[:read], err
}
