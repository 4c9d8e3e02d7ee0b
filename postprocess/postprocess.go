// Package postprocess applies transformations to rendered output before it is
// written. Nothing is post-processed unless a chain is configured, so the
// default render output is exactly what the engine produced.
package postprocess

import "fmt"

// Processor transforms rendered content. outputPath is where the content will
// be written; processors that do not apply to that file type must return the
// content unchanged.
type Processor interface {
	ProcessContent(outputPath string, content []byte) ([]byte, error)
}

type ProcessorFunc func(outputPath string, content []byte) ([]byte, error)

func (f ProcessorFunc) ProcessContent(outputPath string, content []byte) ([]byte, error) {
	return f(outputPath, content)
}

// Chain applies processors in the order they were added.
type Chain struct {
	processors []Processor
}

func NewChain(processors ...Processor) *Chain {
	return &Chain{processors: append([]Processor(nil), processors...)}
}

func (c *Chain) Add(processor Processor) {
	c.processors = append(c.processors, processor)
}

func (c *Chain) AddFunc(fn func(outputPath string, content []byte) ([]byte, error)) {
	c.Add(ProcessorFunc(fn))
}

// Process stops at the first failing processor.
func (c *Chain) Process(outputPath string, content []byte) ([]byte, error) {
	result := content
	for i, processor := range c.processors {
		processed, err := processor.ProcessContent(outputPath, result)
		if err != nil {
			return nil, fmt.Errorf("processor %d failed for %s: %w", i, outputPath, err)
		}
		result = processed
	}
	return result, nil
}

func (c *Chain) HasProcessors() bool {
	return len(c.processors) > 0
}

func (c *Chain) Len() int {
	return len(c.processors)
}
