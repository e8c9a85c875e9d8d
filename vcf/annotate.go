package vcf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hupe1980/veffgo"
	"github.com/hupe1980/veffgo/internal/fs"
)

const lineIDDescription = "Range or region id taken from metadata, generated by the DataLoader."

func methodDescription(method string, columns []string) string {
	return fmt.Sprintf("%s SNV effect prediction. Prediction from model outputs: %s",
		strings.ToUpper(method), strings.Join(columns, veffgo.ValueDelimiter))
}

// LineAppender is implemented by records that can encode themselves as one
// VCF data line. *Record implements it.
type LineAppender interface {
	veffgo.Record
	AppendLine(dst []byte) []byte
}

// AppendLine implements LineAppender.
func (r *Record) AppendLine(dst []byte) []byte { return r.AppendText(dst) }

// ErrUnsupportedRecord is returned for batch records that cannot be encoded
// as VCF lines.
type ErrUnsupportedRecord struct {
	Index int
	Type  string
}

func (e *ErrUnsupportedRecord) Error() string {
	return fmt.Sprintf("vcf: record %d of type %s cannot be encoded", e.Index, e.Type)
}

func (e *ErrUnsupportedRecord) Is(target error) bool { return target == veffgo.ErrStructural }

// ErrFieldCollision is returned when two methods map to the same INFO field,
// e.g. "m1" and "M1".
type ErrFieldCollision struct {
	Field   string
	Methods []string
}

func (e *ErrFieldCollision) Error() string {
	return fmt.Sprintf("vcf: methods %s share INFO field %s", strings.Join(e.Methods, ", "), e.Field)
}

func (e *ErrFieldCollision) Is(target error) bool { return target == veffgo.ErrSchema }

// AnnotationWriter writes each batch record to a VCF stream with one INFO
// field per prediction method plus the line identifier.
//
// The header is declared and committed on the first batch that carries at
// least one method. Existing INFO entries of the records pass through
// unchanged.
type AnnotationWriter struct {
	opts   veffgo.Options
	logger *veffgo.Logger
	prefix veffgo.TagPrefix
	path   string

	out    io.Closer
	stream *Writer

	schema   veffgo.SchemaRegistry
	declared bool
	failed   error
	closed   bool
	rows     int64
	buf      []byte
}

var _ veffgo.Writer = (*AnnotationWriter)(nil)

// NewAnnotationWriter returns a writer emitting to out. The template header
// is cloned; it is never modified. out is closed by Close, but not when
// construction fails.
func NewAnnotationWriter(model veffgo.ModelDescriptor, template *Header, out io.WriteCloser, optFns ...veffgo.Option) (*AnnotationWriter, error) {
	if out == nil {
		return nil, errors.New("vcf: nil output")
	}
	opts := veffgo.ApplyOptions("vcf", optFns...)

	prefix, err := veffgo.DeriveTagPrefixWithLogger(context.Background(), model, opts.Logger)
	if err != nil {
		return nil, err
	}
	if template == nil {
		template = NewHeader()
	}

	return &AnnotationWriter{
		opts:   opts,
		logger: opts.Logger.WithPrefix(prefix),
		prefix: prefix,
		out:    out,
		stream: NewWriter(out, template.Clone()),
	}, nil
}

// CreateAnnotationWriter creates (or truncates) path and returns a writer
// for it. Paths ending in ".gz" are gzip-compressed. The file stays
// exclusively locked until Close.
func CreateAnnotationWriter(model veffgo.ModelDescriptor, template *Header, path string, optFns ...veffgo.Option) (*AnnotationWriter, error) {
	out, err := fs.CreateOutput(fs.Default, path)
	if err != nil {
		return nil, veffgo.NewIOError("create", path, err)
	}
	w, err := NewAnnotationWriter(model, template, out, optFns...)
	if err != nil {
		_ = out.Close()
		return nil, err
	}
	w.path = path
	return w, nil
}

// Prefix returns the tag prefix namespacing every field this writer emits.
func (w *AnnotationWriter) Prefix() veffgo.TagPrefix { return w.prefix }

// Header returns the writer's own header (a clone of the template plus the
// declared fields).
func (w *AnnotationWriter) Header() *Header { return w.stream.Header() }

// Rows returns the number of records written.
func (w *AnnotationWriter) Rows() int64 { return w.rows }

// Write annotates and appends the batch records in order.
func (w *AnnotationWriter) Write(ctx context.Context, b veffgo.Batch) (err error) {
	if w.closed {
		return veffgo.ErrClosed
	}
	if w.failed != nil {
		return veffgo.Poisoned(w.failed)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		d := time.Since(start)
		w.opts.MetricsCollector.RecordWrite(w.opts.WriterName, b.Len(), d, err)
		w.logger.LogBatch(ctx, b.Len(), len(b.Predictions), d, err)
	}()

	if err := b.Validate(); err != nil {
		return err
	}
	records, err := lineAppenders(b.Records)
	if err != nil {
		return err
	}
	if len(b.Predictions) == 0 {
		if len(records) > 0 {
			w.logger.LogSkippedBatch(ctx, len(records))
		}
		return nil
	}

	if !w.declared {
		if err := w.checkFields(b.Methods()); err != nil {
			w.failed = err
			return err
		}
	}
	snap, err := w.schema.Observe(b.Predictions)
	if err != nil {
		w.failed = err
		return err
	}
	if !w.declared {
		if err := w.declare(snap); err != nil {
			w.failed = err
			return err
		}
		w.logger.LogSchemaLocked(ctx, snap)
	}

	buf := w.buf[:0]
	for i, r := range records {
		if w.opts.StandardiseVarID && w.opts.IDGenerator != nil {
			r.SetID(w.opts.IDGenerator(r))
		}
		for _, m := range snap.Methods {
			r.SetInfo(w.prefix.Field(m), w.opts.FloatFormat.JoinRow(b.Predictions[m].Row(i)))
		}
		lineID := ""
		if b.LineIDs != nil {
			lineID = b.LineIDs[i]
		}
		r.SetInfo(w.prefix.LineIDField(), lineID)
		buf = r.AppendLine(buf)
	}
	w.buf = buf

	if _, err := w.stream.Write(buf); err != nil {
		err = veffgo.NewIOError("write", w.path, err)
		w.failed = err
		return err
	}
	w.rows += int64(len(records))
	return nil
}

// checkFields rejects method sets in which two names yield the same field.
func (w *AnnotationWriter) checkFields(methods []string) error {
	seen := make(map[string]string, len(methods))
	for _, m := range methods {
		id := w.prefix.Field(m)
		if prev, ok := seen[id]; ok {
			return &ErrFieldCollision{Field: id, Methods: []string{prev, m}}
		}
		seen[id] = m
	}
	return nil
}

func (w *AnnotationWriter) declare(snap *veffgo.SchemaSnapshot) error {
	for _, m := range snap.Methods {
		if err := w.stream.DeclareInfo(InfoDef{
			ID:          w.prefix.Field(m),
			Number:      ".",
			Type:        "String",
			Description: methodDescription(m, snap.Columns),
		}); err != nil {
			return err
		}
	}
	if err := w.stream.DeclareInfo(InfoDef{
		ID:          w.prefix.LineIDField(),
		Number:      ".",
		Type:        "String",
		Description: lineIDDescription,
	}); err != nil {
		return err
	}
	w.declared = true
	return nil
}

func lineAppenders(records []veffgo.Record) ([]LineAppender, error) {
	out := make([]LineAppender, len(records))
	for i, r := range records {
		la, ok := r.(LineAppender)
		if !ok {
			return nil, &ErrUnsupportedRecord{Index: i, Type: fmt.Sprintf("%T", r)}
		}
		out[i] = la
	}
	return out, nil
}

// Close commits the header if no batch did (producing a header-only VCF),
// then flushes and releases the output. Close is idempotent.
func (w *AnnotationWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	start := time.Now()

	var errs []error
	if !w.stream.Committed() {
		if err := w.stream.WriteHeader(); err != nil {
			errs = append(errs, veffgo.NewIOError("write header", w.path, err))
		}
	}
	if err := w.out.Close(); err != nil {
		errs = append(errs, veffgo.NewIOError("close", w.path, err))
	}
	err := errors.Join(errs...)

	w.opts.MetricsCollector.RecordClose(w.opts.WriterName, time.Since(start), err)
	w.logger.LogClose(context.Background(), w.rows, uint64(w.stream.BytesWritten()), err)
	return err
}
