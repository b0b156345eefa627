// Package codegen issues vote codes.
package codegen

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/vncsmyrnk/enquesta/internal/core/ports"
)

const DefaultCodeLength = 8

type NanoIDGenerator struct {
	length int
}

var _ ports.TokenGenerator = (*NanoIDGenerator)(nil)

func NewNanoIDGenerator(length int) *NanoIDGenerator {
	if length <= 0 {
		length = DefaultCodeLength
	}
	return &NanoIDGenerator{length: length}
}

func (g *NanoIDGenerator) NewToken() (string, error) {
	id, err := gonanoid.New(g.length)
	if err != nil {
		return "", fmt.Errorf("failed to generate vote code: %w", err)
	}
	return id, nil
}
