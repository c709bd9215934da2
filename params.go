package main

import (
	"slices"
)

// ShaderParams is the per-frame uniform set handed to the Device. Floats
// and spectra are written by the render loop, flags only by key handlers.
type ShaderParams struct {
	floats  map[string]float64
	spectra map[string]SpectrumSnapshot
	flags   map[string]bool
}

func NewShaderParams() *ShaderParams {
	return &ShaderParams{
		floats:  make(map[string]float64),
		spectra: make(map[string]SpectrumSnapshot),
		flags:   make(map[string]bool),
	}
}

func (p *ShaderParams) SetFloat(name string, v float64) {
	p.floats[name] = v
}

func (p *ShaderParams) Float(name string) (float64, bool) {
	v, ok := p.floats[name]
	return v, ok
}

func (p *ShaderParams) SetSpectrum(name string, s SpectrumSnapshot) {
	p.spectra[name] = s
}

func (p *ShaderParams) Spectrum(name string) (SpectrumSnapshot, bool) {
	s, ok := p.spectra[name]
	return s, ok
}

func (p *ShaderParams) SetFlag(name string, v bool) {
	p.flags[name] = v
}

func (p *ShaderParams) Flag(name string) bool {
	return p.flags[name]
}

func (p *ShaderParams) HasFlag(name string) bool {
	_, ok := p.flags[name]
	return ok
}

// ToggleFlag flips a flag and returns its new value.
func (p *ShaderParams) ToggleFlag(name string) bool {
	p.flags[name] = !p.flags[name]
	return p.flags[name]
}

// The name accessors return sorted names so uniform upload order is
// stable from frame to frame.

func (p *ShaderParams) FloatNames() []string {
	return sortedKeys(p.floats)
}

func (p *ShaderParams) SpectrumNames() []string {
	return sortedKeys(p.spectra)
}

func (p *ShaderParams) FlagNames() []string {
	return sortedKeys(p.flags)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
