//go:build !(js && wasm)

package hyper

import (
	"github.com/vango-dev/hyperdom/pkg/dom"
	"github.com/vango-dev/hyperdom/pkg/dom/memdom"
)

func defaultDocument() dom.Document {
	return memdom.NewDocument()
}
