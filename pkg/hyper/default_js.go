//go:build js && wasm

package hyper

import (
	"github.com/vango-dev/hyperdom/pkg/dom"
	"github.com/vango-dev/hyperdom/pkg/dom/jsdom"
)

func defaultDocument() dom.Document {
	return jsdom.Global()
}
