package rasterize

import "image/color"

// S52Colors holds the named ENC/CM93 presentation-library colors this
// renderer uses. Day and Night return distinct tables; Night substitutes
// red-tinted variants for anything that would otherwise wash out a
// bridge's night vision.
type S52Colors struct {
	NoData        color.NRGBA
	Cursor        color.NRGBA
	ChartBlack    color.NRGBA
	ChartGridDay  color.NRGBA
	ChartGridFaint color.NRGBA
	ChartRed      color.NRGBA
	ChartGreen    color.NRGBA
	ChartYellow   color.NRGBA
	ChartMagenta  color.NRGBA
	ChartMagentaFaint color.NRGBA
	ChartBrown    color.NRGBA
	ChartWhite    color.NRGBA
	Sounding1     color.NRGBA
	Sounding2     color.NRGBA
	DepthMedShallow color.NRGBA
	DepthMedium   color.NRGBA
	DepthDeep     color.NRGBA
	Land          color.NRGBA
	LandFaint     color.NRGBA
	Coastline     color.NRGBA
	DepthContour  color.NRGBA
}

// DayColors is the standard S-52 daytime palette.
func DayColors() S52Colors {
	return S52Colors{
		NoData:            color.NRGBA{R: 0, G: 0, B: 0, A: 0},
		Cursor:             color.NRGBA{R: 0, G: 0, B: 0, A: 255},
		ChartBlack:         color.NRGBA{R: 0, G: 0, B: 0, A: 255},
		ChartGridDay:       color.NRGBA{R: 124, G: 156, B: 177, A: 255},
		ChartGridFaint:     color.NRGBA{R: 180, G: 200, B: 210, A: 255},
		ChartRed:           color.NRGBA{R: 226, G: 39, B: 39, A: 255},
		ChartGreen:         color.NRGBA{R: 46, G: 153, B: 72, A: 255},
		ChartYellow:        color.NRGBA{R: 255, G: 213, B: 0, A: 255},
		ChartMagenta:       color.NRGBA{R: 199, G: 30, B: 138, A: 255},
		ChartMagentaFaint:  color.NRGBA{R: 226, G: 150, B: 196, A: 255},
		ChartBrown:         color.NRGBA{R: 145, G: 98, B: 61, A: 255},
		ChartWhite:         color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Sounding1:          color.NRGBA{R: 43, G: 74, B: 112, A: 255},
		Sounding2:          color.NRGBA{R: 90, G: 120, B: 150, A: 255},
		DepthMedShallow:    color.NRGBA{R: 181, G: 221, B: 255, A: 255},
		DepthMedium:        color.NRGBA{R: 140, G: 195, B: 235, A: 255},
		DepthDeep:          color.NRGBA{R: 90, G: 150, B: 200, A: 255},
		Land:               color.NRGBA{R: 230, G: 220, B: 170, A: 255},
		LandFaint:          color.NRGBA{R: 240, G: 235, B: 210, A: 255},
		Coastline:          color.NRGBA{R: 0, G: 0, B: 0, A: 255},
		DepthContour:       color.NRGBA{R: 90, G: 150, B: 200, A: 255},
	}
}

// NightColors substitutes red-tinted, lower-luminance variants for the
// bright day colors.
func NightColors() S52Colors {
	return S52Colors{
		NoData:            color.NRGBA{R: 0, G: 0, B: 0, A: 0},
		Cursor:             color.NRGBA{R: 90, G: 20, B: 20, A: 255},
		ChartBlack:         color.NRGBA{R: 0, G: 0, B: 0, A: 255},
		ChartGridDay:       color.NRGBA{R: 60, G: 30, B: 30, A: 255},
		ChartGridFaint:     color.NRGBA{R: 40, G: 20, B: 20, A: 255},
		ChartRed:           color.NRGBA{R: 140, G: 20, B: 20, A: 255},
		ChartGreen:         color.NRGBA{R: 30, G: 80, B: 35, A: 255},
		ChartYellow:        color.NRGBA{R: 140, G: 110, B: 0, A: 255},
		ChartMagenta:       color.NRGBA{R: 110, G: 15, B: 70, A: 255},
		ChartMagentaFaint:  color.NRGBA{R: 90, G: 50, B: 70, A: 255},
		ChartBrown:         color.NRGBA{R: 70, G: 45, B: 25, A: 255},
		ChartWhite:         color.NRGBA{R: 150, G: 120, B: 120, A: 255},
		Sounding1:          color.NRGBA{R: 60, G: 30, B: 30, A: 255},
		Sounding2:          color.NRGBA{R: 80, G: 40, B: 40, A: 255},
		DepthMedShallow:    color.NRGBA{R: 60, G: 40, B: 40, A: 255},
		DepthMedium:        color.NRGBA{R: 45, G: 30, B: 30, A: 255},
		DepthDeep:          color.NRGBA{R: 30, G: 20, B: 20, A: 255},
		Land:               color.NRGBA{R: 70, G: 45, B: 30, A: 255},
		LandFaint:          color.NRGBA{R: 55, G: 40, B: 30, A: 255},
		Coastline:          color.NRGBA{R: 120, G: 40, B: 40, A: 255},
		DepthContour:       color.NRGBA{R: 45, G: 30, B: 30, A: 255},
	}
}
