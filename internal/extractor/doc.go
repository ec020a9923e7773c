// Package extractor turns an aggregated source dump into typed, located
// code fragments.
//
// The dump is a sequence of sections, each a file marker, an optional
// language tag and a fenced content block:
//
//	## File: app/auth.py
//	```python
//	def login(user):
//	    ...
//	```
//
// When the fence tag is absent the language is inferred from the path's
// extension.
//
// # Line Classification
//
// Each language has an ordered table of line-classification rules
// (import, class-open, function-open, comment, decorator). The scanner
// keeps one open block at a time: unclassified lines accumulate into it,
// and a classification change or end of file closes it. Closed function
// and class blocks are emitted as fragments whose excerpt is a bounded
// preview (the first few lines only) — full bodies are never stored.
//
// While scanning, TODO/FIXME markers and over-long function blocks are
// counted as per-file complexity signals.
//
// A section whose language has no rule table still yields a FileRecord
// with a correct line count, just no fragments. A malformed section is
// skipped with a logged warning and extraction continues.
package extractor
