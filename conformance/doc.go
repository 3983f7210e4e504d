// Package conformance checks converters against golden fixture files.
//
// A fixture pairs an encoded input file with a reference file holding the
// expected lexatoms. Each fixture is converted under several call patterns
// that chop the source and destination differently:
//
//   - OneBeat supplies the whole source and destination in one call.
//   - StepwiseSource grows the source by one byte per call.
//   - StepwiseDrain grows the destination by one lexatom per call.
//   - Random(seed) grows both by pseudo-random amounts.
//
// Every pattern must reproduce the reference exactly. Between calls the
// harness verifies the converter's cursors, residue and untouched buffers.
//
// Reference files are named <stem>.dat for 8-bit lexatoms and
// <stem>-<bits>-<le|be>.dat otherwise, stored in the host byte order.
package conformance
