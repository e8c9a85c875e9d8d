package vcf

import (
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/veffgo"
)

const missing = "."

type infoField struct {
	key   string
	value string
	flag  bool
}

// Record is one VCF data line. It implements veffgo.Record.
//
// INFO entries keep their insertion order; SetInfo on an existing key
// replaces the value in place.
type Record struct {
	chrom  string
	pos    int64
	id     string
	ref    string
	alt    []string
	qual   string
	filter string
	info   []infoField

	format  string
	samples []string
}

var _ veffgo.Record = (*Record)(nil)

// NewRecord returns a record with missing QUAL, FILTER and INFO.
func NewRecord(chrom string, pos int64, id, ref string, alt ...string) *Record {
	return &Record{chrom: chrom, pos: pos, id: id, ref: ref, alt: alt}
}

func (r *Record) Chrom() string   { return r.chrom }
func (r *Record) Pos() int64      { return r.pos }
func (r *Record) ID() string      { return r.id }
func (r *Record) SetID(id string) { r.id = id }
func (r *Record) Ref() string     { return r.ref }
func (r *Record) Alt() []string   { return r.alt }

// Qual returns the raw QUAL column.
func (r *Record) Qual() string { return r.qual }

// SetQual sets the raw QUAL column.
func (r *Record) SetQual(q string) { r.qual = q }

// Filter returns the raw FILTER column.
func (r *Record) Filter() string { return r.filter }

// SetFilter sets the raw FILTER column (e.g. "PASS").
func (r *Record) SetFilter(f string) { r.filter = f }

// SetSamples sets the FORMAT column and one raw column per sample.
func (r *Record) SetSamples(format string, samples ...string) {
	r.format = format
	r.samples = samples
}

// Info returns the value of an INFO key. Flags report an empty value.
func (r *Record) Info(key string) (string, bool) {
	i := r.infoIndex(key)
	if i < 0 {
		return "", false
	}
	return r.info[i].value, true
}

// SetInfo sets an INFO key to value.
func (r *Record) SetInfo(key, value string) {
	if i := r.infoIndex(key); i >= 0 {
		r.info[i] = infoField{key: key, value: value}
		return
	}
	r.info = append(r.info, infoField{key: key, value: value})
}

// SetFlag sets a valueless INFO flag.
func (r *Record) SetFlag(key string) {
	if i := r.infoIndex(key); i >= 0 {
		r.info[i] = infoField{key: key, flag: true}
		return
	}
	r.info = append(r.info, infoField{key: key, flag: true})
}

// InfoKeys returns the INFO keys in order.
func (r *Record) InfoKeys() []string {
	keys := make([]string, len(r.info))
	for i, f := range r.info {
		keys[i] = f.key
	}
	return keys
}

func (r *Record) infoIndex(key string) int {
	return slices.IndexFunc(r.info, func(f infoField) bool { return f.key == key })
}

// AppendText appends the record as one tab-separated line, including the
// trailing newline.
func (r *Record) AppendText(dst []byte) []byte {
	dst = append(dst, orMissing(r.chrom)...)
	dst = append(dst, '\t')
	dst = strconv.AppendInt(dst, r.pos, 10)
	dst = append(dst, '\t')
	dst = append(dst, orMissing(r.id)...)
	dst = append(dst, '\t')
	dst = append(dst, orMissing(r.ref)...)
	dst = append(dst, '\t')
	dst = append(dst, orMissing(strings.Join(r.alt, ","))...)
	dst = append(dst, '\t')
	dst = append(dst, orMissing(r.qual)...)
	dst = append(dst, '\t')
	dst = append(dst, orMissing(r.filter)...)
	dst = append(dst, '\t')
	if len(r.info) == 0 {
		dst = append(dst, missing...)
	}
	for i, f := range r.info {
		if i > 0 {
			dst = append(dst, ';')
		}
		dst = append(dst, f.key...)
		if !f.flag {
			dst = append(dst, '=')
			dst = append(dst, EscapeInfoValue(f.value)...)
		}
	}
	if r.format != "" {
		dst = append(dst, '\t')
		dst = append(dst, r.format...)
		for _, s := range r.samples {
			dst = append(dst, '\t')
			dst = append(dst, orMissing(s)...)
		}
	}
	return append(dst, '\n')
}

func (r *Record) String() string {
	return strings.TrimSuffix(string(r.AppendText(nil)), "\n")
}

func orMissing(s string) string {
	if s == "" {
		return missing
	}
	return s
}

var infoEscaper = strings.NewReplacer(
	"%", "%25",
	";", "%3B",
	"=", "%3D",
	"\t", "%09",
	"\n", "%0A",
	"\r", "%0D",
)

// EscapeInfoValue percent-encodes the characters VCF reserves inside INFO
// values.
func EscapeInfoValue(s string) string {
	if !strings.ContainsAny(s, "%;=\t\n\r") {
		return s
	}
	return infoEscaper.Replace(s)
}
