package mapview

import (
	"errors"
	"fmt"
)

// DefaultBasemap is the key a map shows unless configured otherwise.
const DefaultBasemap = "imagery"

// ErrUnknownBasemap is returned for keys missing from the table.
var ErrUnknownBasemap = errors.New("unknown basemap")

// Basemap is a selectable tile imagery source.
type Basemap struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

// Basemaps is an ordered, read-only basemap table.
type Basemaps struct {
	list  []Basemap
	index map[string]int
}

// NewBasemaps builds a table; keys must be unique and non-empty.
func NewBasemaps(list ...Basemap) (*Basemaps, error) {
	b := &Basemaps{
		list:  make([]Basemap, 0, len(list)),
		index: make(map[string]int, len(list)),
	}
	for _, bm := range list {
		if bm.Key == "" || bm.URL == "" {
			return nil, fmt.Errorf("basemap %q: key and url are required", bm.Key)
		}
		if _, dup := b.index[bm.Key]; dup {
			return nil, fmt.Errorf("basemap %q: duplicate key", bm.Key)
		}
		b.index[bm.Key] = len(b.list)
		b.list = append(b.list, bm)
	}
	return b, nil
}

// Get returns the basemap stored under key.
func (b *Basemaps) Get(key string) (Basemap, error) {
	i, ok := b.index[key]
	if !ok {
		return Basemap{}, fmt.Errorf("%w: %s", ErrUnknownBasemap, key)
	}
	return b.list[i], nil
}

// List returns the basemaps in presentation order.
func (b *Basemaps) List() []Basemap {
	out := make([]Basemap, len(b.list))
	copy(out, b.list)
	return out
}

const (
	osmCarto = `&copy; <a href="https://www.openstreetmap.org/">OSM</a> &copy; CARTO`
	usgsLink = `<a href='https://www.usgs.gov/'>U.S. Geological Survey</a>`
)

// DefaultBasemaps returns the built-in basemap table.
func DefaultBasemaps() *Basemaps {
	b, err := NewBasemaps(
		Basemap{Key: "imagery", Label: "Esri Imagery",
			URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
			Attribution: "Tiles &copy; Esri"},
		Basemap{Key: "positron", Label: "Positron (clean)",
			URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
			Attribution: osmCarto},
		Basemap{Key: "voyager", Label: "Voyager",
			URL:         "https://{s}.basemaps.cartocdn.com/rastertiles/voyager/{z}/{x}/{y}{r}.png",
			Attribution: osmCarto},
		Basemap{Key: "dark", Label: "Carto Dark",
			URL:         "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}{r}.png",
			Attribution: osmCarto},
		Basemap{Key: "opentopo", Label: "OpenTopoMap",
			URL:         "https://{s}.tile.opentopomap.org/{z}/{x}/{y}.png",
			Attribution: "&copy; OpenTopoMap (CC-BY-SA) &copy; OpenStreetMap contributors"},
		Basemap{Key: "osm", Label: "OpenStreetMap",
			URL:         "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
			Attribution: "&copy; OpenStreetMap contributors"},
		Basemap{Key: "transport", Label: "Public Transport",
			URL:         "https://tile.memomaps.de/tilegen/{z}/{x}/{y}.png",
			Attribution: "Map data &copy; OpenStreetMap contributors | <a href='https://memomaps.de/'>memomaps.de</a>"},
		Basemap{Key: "cyclOSM", Label: "CyclOSM (cycling map)",
			URL:         "https://{s}.tile-cyclosm.openstreetmap.fr/cyclosm/{z}/{x}/{y}.png",
			Attribution: "Map data &copy; OpenStreetMap contributors | CyclOSM"},
		Basemap{Key: "usgsTopo", Label: "USGS Topographic",
			URL:         "https://basemap.nationalmap.gov/arcgis/rest/services/USGSTopo/MapServer/tile/{z}/{y}/{x}",
			Attribution: "Tiles courtesy of " + usgsLink},
		Basemap{Key: "usgsImagery", Label: "USGS Imagery Only",
			URL:         "https://basemap.nationalmap.gov/arcgis/rest/services/USGSImageryOnly/MapServer/tile/{z}/{y}/{x}",
			Attribution: "Imagery courtesy of " + usgsLink},
		Basemap{Key: "usgsImageryTopo", Label: "USGS Imagery + Topo",
			URL:         "https://basemap.nationalmap.gov/arcgis/rest/services/USGSImageryTopo/MapServer/tile/{z}/{y}/{x}",
			Attribution: "Imagery & Topo courtesy of " + usgsLink},
		Basemap{Key: "usgsRelief", Label: "USGS Shaded Relief",
			URL:         "https://basemap.nationalmap.gov/arcgis/rest/services/USGSShadedReliefOnly/MapServer/tile/{z}/{y}/{x}",
			Attribution: "Shaded Relief courtesy of " + usgsLink},
	)
	if err != nil {
		panic(err)
	}
	return b
}
