// Package json emits machine-readable descriptors as deps.json.
package json

import (
	"encoding/json"

	"github.com/depnix/depnix/pkg/emit"
	"github.com/depnix/depnix/pkg/fetch"
)

func init() {
	emit.RegisterEmitter(&jsonEmitter{})
}

type jsonEmitter struct{}

func (e *jsonEmitter) Name() string { return "json" }

func (e *jsonEmitter) FileName() string { return "deps.json" }

func (e *jsonEmitter) Render(descs []*fetch.Descriptor) ([]byte, error) {
	// Render a list, not a map: order carries the generator's sorted walk.
	if descs == nil {
		descs = []*fetch.Descriptor{}
	}
	data, err := json.MarshalIndent(descs, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
