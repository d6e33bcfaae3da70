package transfer

import (
	"encoding/base64"
	"io"
)

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// copyBase64 encodes src into dst as standard padded base64. Each full
// chunk of len(buf) bytes is encoded on its own, which only yields a valid
// stream because len(buf) is a multiple of 3: padding can then only appear
// after the last, short chunk.
func copyBase64(dst io.Writer, src io.Reader, buf []byte) (int64, error) {
	out := make([]byte, base64.StdEncoding.EncodedLen(len(buf)))

	var written int64
	for {
		n, err := io.ReadFull(src, buf)
		if n > 0 {
			size := base64.StdEncoding.EncodedLen(n)
			base64.StdEncoding.Encode(out, buf[:n])
			m, werr := dst.Write(out[:size])
			written += int64(m)
			if werr != nil {
				return written, werr
			}
		}

		switch err {
		case nil:
		case io.EOF, io.ErrUnexpectedEOF:
			return written, nil
		default:
			return written, err
		}
	}
}

const base91Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!#$%&()*+,./:;<=>?@[]^_`{|}~\""

// base91Writer is a streaming basE91 encoder. Close must be called to flush
// the bits still queued after the last Write.
type base91Writer struct {
	w     io.Writer
	queue uint32
	nbits uint
	out   []byte
}

func newBase91Writer(w io.Writer) *base91Writer {
	return &base91Writer{w: w}
}

func (bw *base91Writer) Write(p []byte) (int, error) {
	bw.out = bw.out[:0]

	for _, b := range p {
		bw.queue |= uint32(b) << bw.nbits
		bw.nbits += 8

		if bw.nbits > 13 {
			v := bw.queue & 8191
			if v > 88 {
				bw.queue >>= 13
				bw.nbits -= 13
			} else {
				v = bw.queue & 16383
				bw.queue >>= 14
				bw.nbits -= 14
			}
			bw.out = append(bw.out, base91Alphabet[v%91], base91Alphabet[v/91])
		}
	}

	if _, err := bw.w.Write(bw.out); err != nil {
		return 0, err
	}

	return len(p), nil
}

func (bw *base91Writer) Close() error {
	if bw.nbits == 0 {
		return nil
	}

	out := []byte{base91Alphabet[bw.queue%91]}
	if bw.nbits > 7 || bw.queue > 90 {
		out = append(out, base91Alphabet[bw.queue/91])
	}
	bw.queue, bw.nbits = 0, 0

	_, err := bw.w.Write(out)
	return err
}

// copyEncoded copies src into dst applying encoding and returns the number
// of bytes written to dst.
func copyEncoded(dst io.Writer, src io.Reader, encoding Encoding, buf []byte) (int64, error) {
	switch encoding {
	case EncodingBase64:
		return copyBase64(dst, src, buf)
	case EncodingBase91:
		counter := &countingWriter{w: dst}
		encoder := newBase91Writer(counter)
		if _, err := io.CopyBuffer(encoder, src, buf); err != nil {
			return counter.n, err
		}
		err := encoder.Close()
		return counter.n, err
	default:
		return io.CopyBuffer(dst, src, buf)
	}
}
