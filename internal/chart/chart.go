// Package chart renders detected setups for notification attachments.
package chart

import "BreakoutSentinel/internal/model"

// Renderer turns a setup and its price history into an image.
type Renderer interface {
	Render(bars []model.PricePoint, setup model.Setup) ([]byte, error)
	// ContentType reports the MIME type of Render's output.
	ContentType() string
}

// NoopRenderer produces no output. Used when chart generation is disabled.
type NoopRenderer struct{}

func (NoopRenderer) Render([]model.PricePoint, model.Setup) ([]byte, error) { return nil, nil }

func (NoopRenderer) ContentType() string { return "" }
