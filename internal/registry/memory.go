package registry

import (
	"context"
	"fmt"

	"modelreport/internal/data"
)

// Memory serves models and frames from a bundle held in memory.
type Memory struct {
	models map[string]*data.Model
	frames map[string]*data.Frame
}

func NewMemory(bundles ...*data.Bundle) *Memory {
	m := &Memory{models: map[string]*data.Model{}, frames: map[string]*data.Frame{}}
	for _, b := range bundles {
		m.Add(b)
	}
	return m
}

// Open loads a bundle file written by data.WriteBundle.
func Open(path string) (*Memory, error) {
	b, err := data.LoadBundle(path)
	if err != nil {
		return nil, err
	}
	return NewMemory(b), nil
}

// Add registers every model and frame of b. Later entries replace earlier ones with the same key.
// Not safe to call concurrently with reads.
func (m *Memory) Add(b *data.Bundle) {
	for i := range b.Models {
		m.models[b.Models[i].ModelID.Name] = &b.Models[i]
	}
	for i := range b.Frames {
		m.frames[b.Frames[i].FrameID.Name] = &b.Frames[i]
	}
}

func (m *Memory) GetModel(_ context.Context, id string) (*data.Model, error) {
	mdl, ok := m.models[id]
	if !ok {
		return nil, fmt.Errorf("model %s: %w", id, ErrNotFound)
	}
	return mdl, nil
}

func (m *Memory) GetFrame(_ context.Context, key string) (*data.Frame, error) {
	f, ok := m.frames[key]
	if !ok {
		return nil, fmt.Errorf("frame %s: %w", key, ErrNotFound)
	}
	return f, nil
}
