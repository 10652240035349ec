package mu

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
	"github.com/flywave/go3d/vec4"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Writer streams primitives in the .mu layout. The first error sticks and
// every later call becomes a no-op, so callers check Err once at the end.
//
// Vectors and quaternions are converted from the right-handed Z-up scene
// convention to the left-handed Y-up engine convention here and nowhere
// else: vectors go out as (x, z, y), quaternions as (x, z, y, -w).
type Writer struct {
	w   *bufio.Writer
	buf [8]byte
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		w.err = errors.Wrapf(err, "Failed to flush mu stream")
	}
	return w.err
}

func (w *Writer) write(p []byte) {
	if w.err != nil {
		return
	}
	if _, err := w.w.Write(p); err != nil {
		w.err = errors.Wrapf(err, "Failed to write mu stream")
	}
}

func (w *Writer) Byte(b byte) {
	w.buf[0] = b
	w.write(w.buf[:1])
}

func (w *Writer) Bool(b bool) {
	if b {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
}

func (w *Writer) Int(v int32) {
	binary.LittleEndian.PutUint32(w.buf[:4], uint32(v))
	w.write(w.buf[:4])
}

func (w *Writer) Entry(e EntryType) {
	w.Int(int32(e))
}

func (w *Writer) Ints(vs []int32) {
	for _, v := range vs {
		w.Int(v)
	}
}

func (w *Writer) Float(v float32) {
	binary.LittleEndian.PutUint32(w.buf[:4], math.Float32bits(v))
	w.write(w.buf[:4])
}

func (w *Writer) Floats(vs ...float32) {
	for _, v := range vs {
		w.Float(v)
	}
}

// String writes a 7-bit encoded length prefix followed by the UTF-8 bytes.
func (w *Writer) String(s string) {
	n := uint32(len(s))
	for n >= 0x80 {
		w.Byte(byte(n) | 0x80)
		n >>= 7
	}
	w.Byte(byte(n))
	w.write([]byte(s))
}

func (w *Writer) Vector(v vec3.T) {
	w.Floats(v[0], v[2], v[1])
}

func (w *Writer) Vector64(v mgl64.Vec3) {
	w.Floats(float32(v[0]), float32(v[2]), float32(v[1]))
}

func (w *Writer) Vectors(vs []vec3.T) {
	for i := range vs {
		w.Vector(vs[i])
	}
}

func (w *Writer) Vector2(v vec2.T) {
	w.Floats(v[0], v[1])
}

func (w *Writer) Quaternion(q mgl64.Quat) {
	w.Floats(float32(q.V[0]), float32(q.V[2]), float32(q.V[1]), float32(-q.W))
}

func (w *Writer) Tangent(t vec4.T) {
	w.Floats(t[0], t[2], t[1], t[3])
}

func (w *Writer) Color(c [4]float32) {
	w.Floats(c[0], c[1], c[2], c[3])
}
