package json

import (
	"encoding/json"
	"io"
)

type Presenter struct {
	document any
}

func NewPresenter(document any) *Presenter {
	return &Presenter{
		document: document,
	}
}

func (p *Presenter) Present(output io.Writer) error {
	enc := json.NewEncoder(output)
	// prevent > and < from being escaped in the payload
	enc.SetEscapeHTML(false)
	enc.SetIndent("", " ")
	return enc.Encode(p.document)
}
