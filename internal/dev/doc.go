// Package dev implements hyperc dev: compile on change and tell open pages
// to reload.
//
// The server watches the source directories with fsnotify, rebuilds the
// .gsx files that changed, and pushes a JSON message to every client:
//
//	{"id": "...", "type": "build", "files": ["views/page_gsx.go"]}
//	{"id": "...", "type": "error", "errors": [{"code": "G004", ...}]}
//	{"id": "...", "type": "clear"}
//
// Browsers receive them on the websocket at dev.reloadPath (default
// /_hyper/reload) through the script at /_hyper/client.js. Tools can read
// the same stream as server-sent events from /_hyper/events. /metrics
// serves the Prometheus metrics of the compiler.
package dev
