package vcf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader_String(t *testing.T) {
	h := NewHeader("NA12878")
	h.AddMeta("##source=test")
	h.AddInfo(InfoDef{ID: "DP", Number: "1", Type: "Integer", Description: `Total "read" depth`})
	h.AddInfo(InfoDef{ID: "X", Description: "first"})
	h.AddInfo(InfoDef{ID: "X", Description: "second"})

	want := "##fileformat=VCFv4.2\n" +
		"##source=test\n" +
		"##INFO=<ID=DP,Number=1,Type=Integer,Description=\"Total \\\"read\\\" depth\">\n" +
		"##INFO=<ID=X,Number=.,Type=String,Description=\"second\">\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tNA12878\n"
	assert.Equal(t, want, h.String())

	def, ok := h.Info("X")
	require.True(t, ok)
	assert.Equal(t, "second", def.Description)
	_, ok = h.Info("missing")
	assert.False(t, ok)
}

func TestHeader_CloneIsIndependent(t *testing.T) {
	h := NewHeader("s1")
	h.AddInfo(InfoDef{ID: "A"})

	c := h.Clone()
	c.AddInfo(InfoDef{ID: "B"})
	c.AddMeta("k=v")
	c.Samples[0] = "changed"

	assert.Len(t, h.Infos(), 1)
	assert.Empty(t, h.Meta)
	assert.Equal(t, []string{"s1"}, h.Samples)
	assert.Len(t, c.Infos(), 2)
}

func TestRecord_AppendText(t *testing.T) {
	r := NewRecord("chr1", 100, "", "A", "C", "G")
	assert.Equal(t, "chr1\t100\t.\tA\tC,G\t.\t.\t.", r.String())

	r.SetQual("50")
	r.SetFilter("PASS")
	r.SetInfo("DP", "10")
	r.SetFlag("DB")
	r.SetInfo("NOTE", "a;b=c")
	r.SetInfo("DP", "11")
	r.SetSamples("GT", "0/1", "")
	assert.Equal(t, "chr1\t100\t.\tA\tC,G\t50\tPASS\tDP=11;DB;NOTE=a%3Bb%3Dc\tGT\t0/1\t.", r.String())
	assert.Equal(t, []string{"DP", "DB", "NOTE"}, r.InfoKeys())

	v, ok := r.Info("DB")
	assert.True(t, ok)
	assert.Empty(t, v)
	assert.Equal(t, "50", r.Qual())
	assert.Equal(t, "PASS", r.Filter())
}

func TestEscapeInfoValue(t *testing.T) {
	assert.Equal(t, "0.1|0.2", EscapeInfoValue("0.1|0.2"))
	assert.Equal(t, "100%25%09x", EscapeInfoValue("100%\tx"))
}

func TestWriter_HeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, nil)

	require.NoError(t, w.DeclareInfo(InfoDef{ID: "A"}))
	require.NoError(t, w.WriteRecord(NewRecord("1", 5, "x", "A", "T")))
	assert.True(t, w.Committed())

	require.ErrorIs(t, w.DeclareInfo(InfoDef{ID: "B"}), ErrHeaderCommitted)
	require.NoError(t, w.WriteHeader())

	want := "##fileformat=VCFv4.2\n" +
		"##INFO=<ID=A,Number=.,Type=String,Description=\"\">\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"1\t5\tx\tA\tT\t.\t.\t.\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, int64(len(want)), w.BytesWritten())
}
