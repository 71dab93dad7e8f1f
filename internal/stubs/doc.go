// Package stubs parses ZIS stub headers and emits the code that binds
// plugins to the shared stub vector.
//
// A stub header declares the vector size and one constant per slot:
//
//	#define MAX_ZIS_STUBS 1000
//	#define ZIS_STUB_ZISCSRVC 50 /* zisCallService */
//	#define ZIS_STUB_ZISDYNSV  1 /* zisdynGetStubVersion mapped */
//
// Scanner reads the header line by line and yields validated Entry values;
// Emitter turns each entry into either an HLASM trampoline (OutputASM) or a
// C assignment into the stub vector (OutputInit). Generate drives one pass.
//
// Validation is streaming: the MAX_ZIS_STUBS value in force when a stub line
// is read is the one it is checked against. A bound declared further down
// does not fix entries above it.
//
// Lines that start like a stub declaration but do not have the full shape are
// rejected unless ScanOptions.Lenient is set, in which case they are reported
// as warnings and skipped.
package stubs
