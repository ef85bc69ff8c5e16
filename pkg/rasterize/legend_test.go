package rasterize

import (
	"bytes"
	"image/png"
	"testing"
)

func TestRenderLegendPNGProducesDecodablePNG(t *testing.T) {
	data, err := RenderLegendPNG(DayColors(), "day")
	if err != nil {
		t.Fatalf("RenderLegendPNG() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("RenderLegendPNG() returned empty data")
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("RenderLegendPNG() output did not decode as PNG: %v", err)
	}
}

func TestRenderLegendPNGDiffersBetweenDayAndNight(t *testing.T) {
	day, err := RenderLegendPNG(DayColors(), "day")
	if err != nil {
		t.Fatalf("RenderLegendPNG(day) error = %v", err)
	}
	night, err := RenderLegendPNG(NightColors(), "night")
	if err != nil {
		t.Fatalf("RenderLegendPNG(night) error = %v", err)
	}
	if bytes.Equal(day, night) {
		t.Fatal("day and night legends encoded identically")
	}
}
