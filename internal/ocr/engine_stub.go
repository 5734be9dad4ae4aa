//go:build !cgo

package ocr

import "context"

type unavailableEngine struct{}

func newEngine() engine {
	return unavailableEngine{}
}

func (unavailableEngine) name() string { return "none (built without cgo)" }

func (unavailableEngine) version() (string, error) {
	return "", ErrEngineUnavailable
}

func (unavailableEngine) recognize(context.Context, []byte, Options) (PageBoxes, error) {
	return PageBoxes{}, ErrEngineUnavailable
}
