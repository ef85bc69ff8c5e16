// Package httpapi binds the chart engine's consumer contract onto a
// github.com/labstack/echo/v4 router, grounded on the handler-struct
// and parseTileParams shape of a tile-serving backend.
package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/saltwatch/cm93chart/internal/ingest"
	"github.com/saltwatch/cm93chart/internal/metrics"
	"github.com/saltwatch/cm93chart/pkg/cm93"
	"github.com/saltwatch/cm93chart/pkg/rasterize"
)

// Handler serves the CM93 engine and ingest pipeline over HTTP.
type Handler struct {
	Reader        *cm93.Reader
	Converter     *ingest.Converter
	TargetDir     string
	DayColors     rasterize.S52Colors
	NightColor    rasterize.S52Colors
	Palette       string // "day" or "night", selects the default render palette
	IngestWorkers int
	IngestGauges  *metrics.IngestGauges // nil disables progress reporting
}

// parseTileParams extracts and validates z, x, y from Echo path
// parameters. The y parameter carries a "<row>.<ext>" suffix (the
// format selector), which is split off and returned separately — a
// single Echo route captures the entire trailing segment verbatim, so
// the extension can't be a separate route token the way §13 names it.
func parseTileParams(c echo.Context) (z, x, y int, ext string, err error) {
	z, err = strconv.Atoi(c.Param("z"))
	if err != nil {
		return
	}
	x, err = strconv.Atoi(c.Param("x"))
	if err != nil {
		return
	}

	yRaw := c.Param("y")
	yPart := yRaw
	if idx := strings.LastIndexByte(yRaw, '.'); idx >= 0 {
		yPart = yRaw[:idx]
		ext = yRaw[idx+1:]
	}
	y, err = strconv.Atoi(yPart)
	if err != nil {
		return
	}

	if z < 0 || z > 22 || x < 0 || y < 0 {
		err = errOutOfRange
	}
	return
}

var errOutOfRange = echoError("tile coordinates out of range")

type echoError string

func (e echoError) Error() string { return string(e) }

// Scales handles GET /scales.
func (h *Handler) Scales(c echo.Context) error {
	scales := h.Reader.AvailableScales()
	out := make([]string, len(scales))
	for i, s := range scales {
		out[i] = string(byte(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"scales": out})
}

// Tile handles both GET /tiles/:z/:x/:y.geojson and GET
// /tiles/:z/:x/:y.png, dispatching on the extension split out of the y
// parameter by parseTileParams.
func (h *Handler) Tile(c echo.Context) error {
	z, x, y, ext, err := parseTileParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tile coordinates"})
	}

	switch strings.ToLower(ext) {
	case "png":
		return h.tilePNG(c, z, x, y)
	case "geojson", "":
		return h.tileGeoJSON(c, z, x, y)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported tile format"})
	}
}

func (h *Handler) tileGeoJSON(c echo.Context, z, x, y int) error {
	fc, err := cm93.TileGeoJSON(h.Reader, z, x, y)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tile generation failed"})
	}
	return c.JSON(http.StatusOK, fc)
}

func (h *Handler) tilePNG(c echo.Context, z, x, y int) error {
	colors := h.DayColors
	palette := c.QueryParam("palette")
	if palette == "" {
		palette = h.Palette
	}
	if strings.EqualFold(palette, "night") {
		colors = h.NightColor
	}

	png, err := cm93.RenderTilePNG(h.Reader, z, x, y, colors)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tile render failed"})
	}
	if len(png) == 0 {
		return c.NoContent(http.StatusNoContent)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// FeaturesInBounds handles
// GET /features?minLat=&minLon=&maxLat=&maxLon=&zoom=.
func (h *Handler) FeaturesInBounds(c echo.Context) error {
	minLat, err1 := strconv.ParseFloat(c.QueryParam("minLat"), 64)
	minLon, err2 := strconv.ParseFloat(c.QueryParam("minLon"), 64)
	maxLat, err3 := strconv.ParseFloat(c.QueryParam("maxLat"), 64)
	maxLon, err4 := strconv.ParseFloat(c.QueryParam("maxLon"), 64)
	zoom, err5 := strconv.Atoi(c.QueryParam("zoom"))
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bounds or zoom parameters"})
	}

	scale := cm93.ScaleForZoom(zoom)
	refs, err := h.Reader.GetFeaturesInBounds(scale, minLat, minLon, maxLat, maxLon)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "feature query failed"})
	}

	features := make([]map[string]any, 0, len(refs))
	for _, ref := range refs {
		f, err := h.Reader.ResolveFeature(ref)
		if err != nil {
			continue
		}
		features = append(features, map[string]any{
			"objectClass": f.ObjectClass,
			"layer":       cm93.ClassifyLayer(f.ObjectClass),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"features": features})
}

// Palette handles GET /palette.png, a debug endpoint rendering the
// active day/night S-52 swatch legend.
func (h *Handler) Palette(c echo.Context) error {
	colors, label := h.DayColors, "day"
	variant := c.QueryParam("variant")
	if variant == "" {
		variant = h.Palette
	}
	if strings.EqualFold(variant, "night") {
		colors, label = h.NightColor, "night"
	}
	png, err := rasterize.RenderLegendPNG(colors, label)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "legend render failed"})
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// Stats handles GET /stats.
func (h *Handler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Reader.Stats())
}

// ingestFolderRequest is the POST /ingest body shape.
type ingestFolderRequest struct {
	Path string `json:"path"`
}

// Ingest handles POST /ingest.
func (h *Handler) Ingest(c echo.Context) error {
	var req ingestFolderRequest
	if err := c.Bind(&req); err != nil || req.Path == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing path"})
	}

	pipeline := &ingest.Pipeline{Converter: h.Converter, TargetDir: h.TargetDir, Workers: h.IngestWorkers}
	if h.IngestGauges != nil {
		pipeline.OnProgress = func(p ingest.Progress) {
			h.IngestGauges.Observe(p.Current, p.Total, int(p.Converted), int(p.Skipped), int(p.Failed))
		}
	}
	result, err := pipeline.Run(c.Request().Context(), req.Path)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

// folderRequest is the shared POST body shape for /tag-from-bsb and
// /fix-bounds.
type folderRequest struct {
	Folder string `json:"folder"`
}

// TagFromBSB handles POST /tag-from-bsb.
func (h *Handler) TagFromBSB(c echo.Context) error {
	var req folderRequest
	if err := c.Bind(&req); err != nil || req.Folder == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing folder"})
	}
	result, err := ingest.TagFromBSB(req.Folder)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

// FixBounds handles POST /fix-bounds.
func (h *Handler) FixBounds(c echo.Context) error {
	var req folderRequest
	if err := c.Bind(&req); err != nil || req.Folder == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing folder"})
	}
	result, err := ingest.FixBounds(c.Request().Context(), h.Converter, req.Folder)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

// Register wires every route onto e.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/scales", h.Scales)
	e.GET("/tiles/:z/:x/:y", h.Tile)
	e.GET("/features", h.FeaturesInBounds)
	e.GET("/palette.png", h.Palette)
	e.POST("/ingest", h.Ingest)
	e.POST("/tag-from-bsb", h.TagFromBSB)
	e.POST("/fix-bounds", h.FixBounds)
	e.GET("/stats", h.Stats)
}
