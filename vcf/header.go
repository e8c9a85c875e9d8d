package vcf

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// DefaultFileFormat is the VCF version written by NewHeader.
const DefaultFileFormat = "VCFv4.2"

// ErrHeaderCommitted is returned when a field is declared after the header
// was written.
var ErrHeaderCommitted = errors.New("vcf: header already committed")

// InfoDef declares one INFO field.
type InfoDef struct {
	ID          string
	Number      string
	Type        string
	Description string
}

// String renders the definition as a meta-information line without the
// leading "##".
func (d InfoDef) String() string {
	number := d.Number
	if number == "" {
		number = "."
	}
	typ := d.Type
	if typ == "" {
		typ = "String"
	}
	return fmt.Sprintf("INFO=<ID=%s,Number=%s,Type=%s,Description=\"%s\">",
		d.ID, number, typ, escapeDescription(d.Description))
}

func escapeDescription(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// Header is the meta-information and column header of a VCF stream.
// INFO definitions keep their declaration order.
type Header struct {
	FileFormat string
	// Meta holds every other "##key=value" line, without the "##".
	Meta    []string
	Samples []string
	infos   []InfoDef
}

// NewHeader returns an empty header for samples.
func NewHeader(samples ...string) *Header {
	return &Header{FileFormat: DefaultFileFormat, Samples: samples}
}

// AddMeta appends a raw meta-information line ("key=value").
func (h *Header) AddMeta(line string) {
	h.Meta = append(h.Meta, strings.TrimPrefix(line, "##"))
}

// AddInfo declares an INFO field. Redeclaring an ID replaces the definition
// in place.
func (h *Header) AddInfo(def InfoDef) {
	if i := slices.IndexFunc(h.infos, func(d InfoDef) bool { return d.ID == def.ID }); i >= 0 {
		h.infos[i] = def
		return
	}
	h.infos = append(h.infos, def)
}

// Info returns the definition of id.
func (h *Header) Info(id string) (InfoDef, bool) {
	i := slices.IndexFunc(h.infos, func(d InfoDef) bool { return d.ID == id })
	if i < 0 {
		return InfoDef{}, false
	}
	return h.infos[i], true
}

// Infos returns the INFO definitions in declaration order.
func (h *Header) Infos() []InfoDef { return slices.Clone(h.infos) }

// Clone returns a deep copy of h.
func (h *Header) Clone() *Header {
	return &Header{
		FileFormat: h.FileFormat,
		Meta:       slices.Clone(h.Meta),
		Samples:    slices.Clone(h.Samples),
		infos:      slices.Clone(h.infos),
	}
}

// WriteTo writes the header lines, ending with the "#CHROM" line.
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, h.String())
	return int64(n), err
}

func (h *Header) String() string {
	var sb strings.Builder
	ff := h.FileFormat
	if ff == "" {
		ff = DefaultFileFormat
	}
	sb.WriteString("##fileformat=")
	sb.WriteString(ff)
	sb.WriteByte('\n')
	for _, m := range h.Meta {
		sb.WriteString("##")
		sb.WriteString(m)
		sb.WriteByte('\n')
	}
	for _, d := range h.infos {
		sb.WriteString("##")
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	sb.WriteString("#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO")
	if len(h.Samples) > 0 {
		sb.WriteString("\tFORMAT")
		for _, s := range h.Samples {
			sb.WriteByte('\t')
			sb.WriteString(s)
		}
	}
	sb.WriteByte('\n')
	return sb.String()
}
