// Package veffgo provides streaming, schema-locked writers for variant effect
// predictions.
//
// A predict loop produces one batch at a time: the per-method prediction
// tables for N variants, the N variant records themselves and, optionally,
// one line identifier per record. Each writer persists these batches
// incrementally, without buffering the whole dataset, to its own artifact:
//
//   - vcf.AnnotationWriter: annotated VCF, one namespaced INFO field per method
//   - arraystore.Store: growable multi-dataset array store (chunked, append-only)
//   - batchwriter.Writer: flat column batches forwarded to a Sink
//     (TSV, JSON-lines, Parquet, SQL, AMQP, array store)
//
// # Quick Start
//
//	prefix, _ := veffgo.DeriveTagPrefix(veffgo.ModelDescriptor{Source: "kipoi", Name: "DeepSEA/variantEffects"})
//	w, err := vcf.CreateAnnotationWriter(model, header, "out.vcf.gz")
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	for batch := range batches {
//	    if err := w.Write(ctx, batch); err != nil {
//	        return err
//	    }
//	}
//
// # Invariants
//
//   - Every prediction table of a batch has one row per record; line ids, if
//     present, too. Violations are rejected before any byte is written
//     (ErrStructural).
//   - The method set and column labels are locked by the first non-empty
//     batch; later drift is fatal for that writer (ErrSchema).
//   - Growable arrays are resized exactly once per batch and previously
//     written rows are never touched.
//   - Close is idempotent and always releases the artifact.
//
// Writers are single-threaded: call Write sequentially and Close once after
// the last batch. Use Group to drive several writers from one loop.
package veffgo
