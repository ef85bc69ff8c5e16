package rasterize

import (
	"image/color"

	"github.com/saltwatch/cm93chart/internal/cell"
	"github.com/saltwatch/cm93chart/internal/dictionary"
)

// FeatureColor selects a render color for a feature's object class,
// consulting its DRVAL1 attribute for depth-area shading when present.
func FeatureColor(objectClass uint16, attrs map[uint16]cell.AttributeValue, colors S52Colors) color.NRGBA {
	switch objectClass {
	case dictionary.ObjLndAre:
		return colors.Land
	case dictionary.ObjDepAre:
		if v, ok := attrs[dictionary.AttrDrval1]; ok {
			switch {
			case v.Float < 5:
				return colors.DepthMedShallow
			case v.Float < 20:
				return colors.DepthMedium
			default:
				return colors.DepthDeep
			}
		}
		return colors.DepthMedium
	case dictionary.ObjDepCnt:
		return colors.DepthContour
	case dictionary.ObjCoalne:
		return colors.Coastline
	case dictionary.ObjSoundg:
		return colors.Sounding1
	default:
		return colors.ChartGridDay
	}
}
