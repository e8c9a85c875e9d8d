package vcf

import (
	"io"
)

// Writer is a header-once VCF stream writer. The header may be extended with
// DeclareInfo until the first byte is written.
type Writer struct {
	w         io.Writer
	header    *Header
	committed bool
	written   int64
}

// NewWriter returns a writer for w. The header is owned by the writer from
// now on; pass a clone to keep a template unchanged.
func NewWriter(w io.Writer, h *Header) *Writer {
	if h == nil {
		h = NewHeader()
	}
	return &Writer{w: w, header: h}
}

// Header returns the header being written.
func (w *Writer) Header() *Header { return w.header }

// Committed reports whether the header was written.
func (w *Writer) Committed() bool { return w.committed }

// BytesWritten returns the number of bytes handed to the underlying writer.
func (w *Writer) BytesWritten() int64 { return w.written }

// DeclareInfo adds an INFO definition to the header.
func (w *Writer) DeclareInfo(def InfoDef) error {
	if w.committed {
		return ErrHeaderCommitted
	}
	w.header.AddInfo(def)
	return nil
}

// WriteHeader commits the header. It is a no-op once committed.
func (w *Writer) WriteHeader() error {
	if w.committed {
		return nil
	}
	_, err := w.Write(nil)
	return err
}

// Write writes already encoded record lines, committing the header first if
// needed. Header and records go out in a single call to the underlying
// writer.
func (w *Writer) Write(p []byte) (int, error) {
	if !w.committed {
		w.committed = true
		buf := make([]byte, 0, 4096+len(p))
		buf = append(buf, w.header.String()...)
		buf = append(buf, p...)
		n, err := w.w.Write(buf)
		w.written += int64(n)
		return max(0, n-(len(buf)-len(p))), err
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := w.w.Write(p)
	w.written += int64(n)
	return n, err
}

// WriteRecord encodes and writes one record.
func (w *Writer) WriteRecord(r *Record) error {
	_, err := w.Write(r.AppendText(nil))
	return err
}
