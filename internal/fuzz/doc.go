// Package fuzztests houses Go fuzz harnesses that exercise the stub header
// pipeline (source -> scanner -> emitter). Its goal is to smoke test
// robustness and guard against panics or partial output on arbitrary
// headers.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/stubs, internal/diag.
package fuzztests
