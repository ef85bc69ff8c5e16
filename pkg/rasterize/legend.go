package rasterize

import (
	"bytes"

	"github.com/fogleman/gg"
)

// RenderLegendPNG draws a labeled swatch grid of colors, one row per
// named entry, for the debug /palette.png endpoint. It uses gg rather
// than the Rasterizer's hand-rolled scanline fill because this is text
// layout and rectangle drawing, not chart geometry.
func RenderLegendPNG(colors S52Colors, label string) ([]byte, error) {
	rows := []struct {
		Name string
		C    [4]uint8 // R,G,B,A
	}{
		{"ChartBlack", rgbaBytes(colors.ChartBlack)},
		{"ChartRed", rgbaBytes(colors.ChartRed)},
		{"ChartGreen", rgbaBytes(colors.ChartGreen)},
		{"ChartYellow", rgbaBytes(colors.ChartYellow)},
		{"ChartMagenta", rgbaBytes(colors.ChartMagenta)},
		{"ChartBrown", rgbaBytes(colors.ChartBrown)},
		{"ChartWhite", rgbaBytes(colors.ChartWhite)},
		{"Sounding1", rgbaBytes(colors.Sounding1)},
		{"Sounding2", rgbaBytes(colors.Sounding2)},
		{"DepthMedShallow", rgbaBytes(colors.DepthMedShallow)},
		{"DepthMedium", rgbaBytes(colors.DepthMedium)},
		{"DepthDeep", rgbaBytes(colors.DepthDeep)},
		{"Land", rgbaBytes(colors.Land)},
		{"Coastline", rgbaBytes(colors.Coastline)},
		{"DepthContour", rgbaBytes(colors.DepthContour)},
	}

	const rowHeight = 24.0
	const swatchWidth = 40.0
	const width = 260.0
	height := rowHeight*float64(len(rows)) + rowHeight

	dc := gg.NewContext(int(width), int(height))
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0, 0, 0)
	dc.DrawString(label, 8, rowHeight-8)

	for i, row := range rows {
		y := rowHeight * float64(i+1)
		dc.SetRGBA255(int(row.C[0]), int(row.C[1]), int(row.C[2]), int(row.C[3]))
		dc.DrawRectangle(8, y, swatchWidth, rowHeight-4)
		dc.Fill()

		dc.SetRGB(0, 0, 0)
		dc.DrawString(row.Name, swatchWidth+16, y+rowHeight-10)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func rgbaBytes(c interface {
	RGBA() (r, g, b, a uint32)
}) [4]uint8 {
	r, g, b, a := c.RGBA()
	return [4]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}
