package main

import (
	"slices"
	"testing"
)

func TestShaderParams(t *testing.T) {
	p := NewShaderParams()
	p.SetFloat("time", 1.5)
	p.SetFloat("alpha", 0.5)
	p.SetSpectrum("u_data_arr", SpectrumSnapshot{1, 2})
	p.SetFlag("wireframe", true)

	if v, ok := p.Float("time"); !ok || v != 1.5 {
		t.Errorf("Float(time) = %v, %v, want 1.5, true", v, ok)
	}
	if _, ok := p.Float("missing"); ok {
		t.Error("Float(missing) reported ok")
	}
	if s, ok := p.Spectrum("u_data_arr"); !ok || len(s) != 2 {
		t.Errorf("Spectrum(u_data_arr) = %v, %v", s, ok)
	}
	if got := p.FloatNames(); !slices.Equal(got, []string{"alpha", "time"}) {
		t.Errorf("FloatNames() = %v, want [alpha time]", got)
	}
	if got := p.ToggleFlag("wireframe"); got {
		t.Error("ToggleFlag(wireframe) = true, want false")
	}
	if got := p.ToggleFlag("mode"); !got {
		t.Error("ToggleFlag(mode) on unset flag = false, want true")
	}
	if !p.HasFlag("mode") || p.HasFlag("other") {
		t.Error("HasFlag mismatch")
	}
	if got := p.FlagNames(); !slices.Equal(got, []string{"mode", "wireframe"}) {
		t.Errorf("FlagNames() = %v, want [mode wireframe]", got)
	}
}
