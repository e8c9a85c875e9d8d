// Package vcf writes variant effect predictions as annotated VCF.
//
// It contains a minimal VCF text model (Header, Record, a header-once
// stream Writer) and the AnnotationWriter, which attaches one INFO field per
// prediction method to each record:
//
//	##INFO=<ID=KV:kipoi:DeepSEA:DIFF,Number=.,Type=String,Description="DIFF SNV effect prediction. Prediction from model outputs: ctcf|dnase">
//	chr1	100	.	A	C	.	.	KV:kipoi:DeepSEA:DIFF=0.1|0.2;KV:kipoi:DeepSEA:rID=r1
//
// Parsing existing VCF files is left to the caller, who supplies the
// template header and the records.
package vcf
