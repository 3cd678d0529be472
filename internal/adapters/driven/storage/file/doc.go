// Package file provides the filesystem-backed document storage.
//
// A storage directory holds one metadata index and one chunk sidecar
// per document:
//
//	<dir>/metadata.json          {"version":1,"documents":{"<id>":{...}}}
//	<dir>/<id>_chunks.json       [{"doc_id":...,"position":0,...}, ...]
//
// Both files are rewritten in full and fsynced on every mutation. A crash
// mid-write can leave a truncated file; nothing here renames atomically.
package file
