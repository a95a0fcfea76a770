// Package logx configures cppnart's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - Chatty levels (trace/debug/info) bounded by a token bucket, so a fast
//     frame timer can't flood the sinks. Warn and above always go through.
package logx
