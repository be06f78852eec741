package tx

import (
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// borsh strings and Vec<u8> are a u32 little-endian length followed by the bytes

func writeBytes(enc *bin.Encoder, b []byte) error {
	if err := enc.WriteUint32(uint32(len(b)), binary.LittleEndian); err != nil {
		return err
	}
	return enc.WriteBytes(b, false)
}

func writeString(enc *bin.Encoder, s string) error {
	return writeBytes(enc, []byte(s))
}

func readBytes(dec *bin.Decoder) ([]byte, error) {
	n, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read length")
	}
	if int(n) > dec.Remaining() {
		return nil, errors.Errorf("length %d exceeds remaining %d bytes", n, dec.Remaining())
	}
	if n == 0 {
		return []byte{}, nil
	}
	return dec.ReadNBytes(int(n))
}

func readString(dec *bin.Decoder) (string, error) {
	b, err := readBytes(dec)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// u128 is two little-endian u64 words, low word first
func writeU128(enc *bin.Encoder, v *uint256.Int) error {
	if v.BitLen() > 128 {
		return errors.New("amount does not fit in u128")
	}
	if err := enc.WriteUint64(v[0], binary.LittleEndian); err != nil {
		return err
	}
	return enc.WriteUint64(v[1], binary.LittleEndian)
}

func readU128(dec *bin.Decoder) (uint256.Int, error) {
	var v uint256.Int
	lo, err := dec.ReadUint64(binary.LittleEndian)
	if err != nil {
		return v, errors.Wrap(err, "failed to read u128")
	}
	hi, err := dec.ReadUint64(binary.LittleEndian)
	if err != nil {
		return v, errors.Wrap(err, "failed to read u128")
	}
	v[0], v[1] = lo, hi
	return v, nil
}

func writeFixed(enc *bin.Encoder, b []byte) error {
	return enc.WriteBytes(b, false)
}

func readFixed(dec *bin.Decoder, out []byte) error {
	b, err := dec.ReadNBytes(len(out))
	if err != nil {
		return err
	}
	copy(out, b)
	return nil
}
