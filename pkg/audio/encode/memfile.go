// ABOUTME: In-memory io.WriteSeeker
// ABOUTME: Lets the WAV encoder patch its header without touching disk
package encode

import (
	"errors"
	"io"
)

var errNegativeOffset = errors.New("negative seek offset")

// memFile is a growable byte slice with a write cursor
type memFile struct {
	buf []byte
	pos int
}

func (m *memFile) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if end > len(m.buf) {
		if end > cap(m.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, m.buf)
			m.buf = grown
		} else {
			m.buf = m.buf[:end]
		}
	}
	copy(m.buf[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(m.pos) + offset
	case io.SeekEnd:
		abs = int64(len(m.buf)) + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if abs < 0 {
		return 0, errNegativeOffset
	}
	m.pos = int(abs)
	return abs, nil
}

// Bytes returns the written contents
func (m *memFile) Bytes() []byte {
	return m.buf
}
