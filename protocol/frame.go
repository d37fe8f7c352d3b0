// Package protocol implements the wire format between the compiler host
// and its embedding application: LEB128 length-prefixed frames carrying
// CBOR-encoded messages.
package protocol

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// FrameReader decodes a stream of length-prefixed frames from r.
// Frames are read strictly in order; FrameReader never coalesces or
// splits payloads.
type FrameReader struct {
	r *bufio.Reader
}

// NewFrameReader wraps r for frame-at-a-time reading.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: bufio.NewReader(r)}
}

// ReadFrame reads the next varint-prefixed payload. It returns io.EOF only
// when the stream ends exactly on a frame boundary (no partial frame
// pending); a truncated varint or a truncated payload at EOF is reported as
// io.ErrUnexpectedEOF.
func (f *FrameReader) ReadFrame() ([]byte, error) {
	n, err := binary.ReadUvarint(f.r)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("protocol: reading frame length: %w", io.ErrUnexpectedEOF)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(f.r, payload); err != nil {
		return nil, fmt.Errorf("protocol: reading frame payload: %w", io.ErrUnexpectedEOF)
	}
	return payload, nil
}

// FrameWriter encodes payloads as length-prefixed frames onto w.
type FrameWriter struct {
	w io.Writer
}

// NewFrameWriter wraps w for frame-at-a-time writing.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// WriteFrame prepends payload with its length as an unsigned LEB128 varint
// and writes both in one call.
func (f *FrameWriter) WriteFrame(payload []byte) error {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(payload)))

	buf := make([]byte, 0, n+len(payload))
	buf = append(buf, lenBuf[:n]...)
	buf = append(buf, payload...)

	_, err := f.w.Write(buf)
	return err
}
