// Package xmlcatalog parses RNC and ENC product-catalog XML documents
// into a uniform chart record list, detecting dialect from the root
// element rather than requiring a schema.
package xmlcatalog

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/saltwatch/cm93chart/internal/charterrors"
)

// Chart is one catalog entry, normalized across the RNC and ENC
// dialects.
type Chart struct {
	ChartID      string
	Title        string
	ChartType    string // "RNC" or "ENC"
	Format       string
	Scale        int64
	Status       string
	DownloadURL  string
	FileSize     int64
	LastUpdated  string
	Bounds       [][2]float64 // lat, lon vertex list (ENC coverage only)
}

// Catalog is a parsed catalog document.
type Catalog struct {
	Name        string
	CatalogType string
	Charts      []Chart
}

// ParseXML detects the catalog dialect from the root element substring
// and dispatches to the matching parser.
func ParseXML(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	content := string(data)

	switch {
	case strings.Contains(content, "<RncProductCatalogChartCatalogs") || strings.Contains(content, "<RncProductCatalog"):
		return parseRNC(content)
	case strings.Contains(content, "<EncProductCatalog"):
		return parseENC(content)
	default:
		root := firstElementName(content)
		return nil, &charterrors.UnknownCatalogFormat{RootElement: root}
	}
}

func firstElementName(content string) string {
	dec := xml.NewDecoder(strings.NewReader(content))
	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se.Name.Local
		}
	}
}

func parseRNC(content string) (*Catalog, error) {
	dec := xml.NewDecoder(strings.NewReader(content))

	catalogName := "RNC Catalog"
	var charts []Chart

	inHeader := false
	inChart := false
	currentElement := ""

	var number, title, format, url, datetime string

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xmlcatalog: parsing catalog XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			currentElement = t.Name.Local
			switch currentElement {
			case "Header":
				inHeader = true
			case "chart":
				inChart = true
				number, title, format, url, datetime = "", "", "", "", ""
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "Header":
				inHeader = false
			case "chart":
				if inChart && url != "" {
					chartTitle := title
					if chartTitle == "" {
						chartTitle = number
					}
					chartFormat := format
					if chartFormat == "" {
						chartFormat = "BSB"
					}
					charts = append(charts, Chart{
						ChartID:     number,
						Title:       chartTitle,
						ChartType:   "RNC",
						Format:      chartFormat,
						Status:      "Active",
						DownloadURL: url,
						LastUpdated: datetime,
					})
				}
				inChart = false
			}
			currentElement = ""
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			if inHeader && currentElement == "title" {
				catalogName = text
			} else if inChart {
				switch currentElement {
				case "number":
					number = text
				case "title":
					title = text
				case "format":
					format = text
				case "zipfile_location":
					url = text
				case "zipfile_datetime_iso8601":
					datetime = text
				}
			}
		}
	}

	return &Catalog{Name: catalogName, CatalogType: "RNC", Charts: charts}, nil
}

func parseENC(content string) (*Catalog, error) {
	dec := xml.NewDecoder(strings.NewReader(content))

	catalogName := "ENC Catalog"
	var charts []Chart

	inHeader := false
	inCell := false
	inCov := false
	inVertex := false
	currentElement := ""

	var name, lname, status, url, updated string
	var scale, size int64
	var vertices [][2]float64
	var curLat, curLon float64
	var haveLat, haveLon bool

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xmlcatalog: parsing catalog XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			currentElement = t.Name.Local
			switch currentElement {
			case "Header":
				inHeader = true
			case "cell":
				inCell = true
				name, lname, status, url, updated = "", "", "", "", ""
				scale, size = 0, 0
				vertices = nil
			case "cov":
				inCov = true
			case "vertex":
				inVertex = true
				haveLat, haveLon = false, false
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "Header":
				inHeader = false
			case "cell":
				if inCell && url != "" {
					chartTitle := lname
					if chartTitle == "" {
						chartTitle = name
					}
					charts = append(charts, Chart{
						ChartID:     name,
						Title:       chartTitle,
						ChartType:   "ENC",
						Format:      "S57",
						Scale:       scale,
						Status:      status,
						DownloadURL: url,
						FileSize:    size,
						LastUpdated: updated,
						Bounds:      vertices,
					})
				}
				inCell = false
			case "cov":
				inCov = false
			case "vertex":
				if haveLat && haveLon {
					vertices = append(vertices, [2]float64{curLat, curLon})
				}
				inVertex = false
			}
			currentElement = ""
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			if inHeader && currentElement == "title" {
				catalogName = text
			} else if inCell {
				if inVertex {
					switch currentElement {
					case "lat":
						if v, err := strconv.ParseFloat(text, 64); err == nil {
							curLat, haveLat = v, true
						}
					case "long":
						if v, err := strconv.ParseFloat(text, 64); err == nil {
							curLon, haveLon = v, true
						}
					}
				} else if !inCov {
					switch currentElement {
					case "name":
						name = text
					case "lname":
						lname = text
					case "cscale":
						if v, err := strconv.ParseInt(text, 10, 64); err == nil {
							scale = v
						}
					case "status":
						status = text
					case "zipfile_location":
						url = text
					case "zipfile_size":
						if v, err := strconv.ParseInt(text, 10, 64); err == nil {
							size = v
						}
					case "uadt", "isdt":
						if updated == "" {
							updated = text
						}
					}
				}
			}
		}
	}

	return &Catalog{Name: catalogName, CatalogType: "ENC", Charts: charts}, nil
}
