package models

import (
	"context"

	"modelreport/internal/data"
)

//go:generate mockgen -destination=mocks/registry.go -package=mocks . Registry

// Registry fetches trained models by key. Each call is one round trip.
type Registry interface {
	GetModel(ctx context.Context, id string) (*data.Model, error)
}

// Coefficients pairs predictor names with coefficient values in server order.
// A nil *Coefficients marks a model that has no coefficients yet.
type Coefficients struct {
	Names  []string  `json:"names"`
	Values []float64 `json:"values"`
}

func (c *Coefficients) Map() map[string]float64 {
	if c == nil {
		return nil
	}
	m := make(map[string]float64, len(c.Names))
	for i, n := range c.Names {
		m[n] = c.Values[i]
	}
	return m
}

func (c *Coefficients) Get(name string) (float64, bool) {
	if c == nil {
		return 0, false
	}
	for i, n := range c.Names {
		if n == name {
			return c.Values[i], true
		}
	}
	return 0, false
}

func (c *Coefficients) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Names)
}
