package services

import (
	"archive/zip"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	flagEncrypted      = 0x1
	flagDataDescriptor = 0x8
	methodWinZipAES    = 99
	extraWinZipAES     = 0x9901
	zipCryptoHeaderLen = 12
	aesIterations      = 1000
)

var errUnsupportedEncryption = errors.New("unsupported encryption")

func isEncrypted(file *zip.File) bool {
	return file.Flags&flagEncrypted != 0
}

// checkPassword tests password against the encryption header of file. Only
// the header is read; no entry data is decrypted.
func checkPassword(file *zip.File, password string) (bool, error) {
	raw, err := file.OpenRaw()
	if err != nil {
		return false, err
	}
	if file.Method == methodWinZipAES {
		strength, err := aesStrength(file.Extra)
		if err != nil {
			return false, err
		}
		return checkAESPassword(raw, strength, password)
	}
	check := byte(file.CRC32 >> 24)
	if file.Flags&flagDataDescriptor != 0 {
		check = byte(file.ModifiedTime >> 8)
	}
	return checkZipCryptoPassword(raw, check, password)
}

type zipCryptoKeys [3]uint32

func newZipCryptoKeys(password string) *zipCryptoKeys {
	keys := &zipCryptoKeys{0x12345678, 0x23456789, 0x34567890}
	for i := 0; i < len(password); i++ {
		keys.update(password[i])
	}
	return keys
}

func (keys *zipCryptoKeys) update(b byte) {
	keys[0] = crcUpdate(keys[0], b)
	keys[1] = (keys[1]+keys[0]&0xff)*134775813 + 1
	keys[2] = crcUpdate(keys[2], byte(keys[1]>>24))
}

func (keys *zipCryptoKeys) stream() byte {
	temp := (keys[2] | 2) & 0xffff
	return byte((temp * (temp ^ 1)) >> 8)
}

func crcUpdate(crc uint32, b byte) uint32 {
	return crc32.IEEETable[byte(crc)^b] ^ (crc >> 8)
}

func checkZipCryptoPassword(raw io.Reader, check byte, password string) (bool, error) {
	header := make([]byte, zipCryptoHeaderLen)
	if _, err := io.ReadFull(raw, header); err != nil {
		return false, fmt.Errorf("read encryption header: %w", err)
	}
	keys := newZipCryptoKeys(password)
	var plain byte
	for _, b := range header {
		plain = b ^ keys.stream()
		keys.update(plain)
	}
	return plain == check, nil
}

// aesStrength reads the key strength (1, 2 or 3) from the WinZip AES extra
// field.
func aesStrength(extra []byte) (int, error) {
	for len(extra) >= 4 {
		id := binary.LittleEndian.Uint16(extra[0:2])
		size := int(binary.LittleEndian.Uint16(extra[2:4]))
		if len(extra) < 4+size {
			break
		}
		if id == extraWinZipAES && size >= 7 {
			strength := int(extra[8])
			if strength < 1 || strength > 3 {
				return 0, fmt.Errorf("%w: aes strength %d", errUnsupportedEncryption, strength)
			}
			return strength, nil
		}
		extra = extra[4+size:]
	}
	return 0, fmt.Errorf("%w: missing aes extra field", errUnsupportedEncryption)
}

func checkAESPassword(raw io.Reader, strength int, password string) (bool, error) {
	keyLen := 8 + 8*strength
	saltLen := keyLen / 2
	header := make([]byte, saltLen+2)
	if _, err := io.ReadFull(raw, header); err != nil {
		return false, fmt.Errorf("read encryption header: %w", err)
	}
	salt, verifier := header[:saltLen], header[saltLen:]
	derived := pbkdf2.Key([]byte(password), salt, aesIterations, 2*keyLen+2, sha1.New)
	return subtle.ConstantTimeCompare(derived[2*keyLen:], verifier) == 1, nil
}
