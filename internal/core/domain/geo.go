package domain

// Coordinate is a (latitude, longitude) pair in WGS 84. No range validation is applied.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MapView is the center and zoom level the map surface should show.
type MapView struct {
	Center Coordinate `json:"center"`
	Zoom   int        `json:"zoom"`
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// Center is the midpoint of the box.
func (b Bounds) Center() Coordinate {
	return Coordinate{Lat: (b.MinLat + b.MaxLat) / 2, Lng: (b.MinLng + b.MaxLng) / 2}
}

// Contains reports whether c lies inside the box (edges included).
func (b Bounds) Contains(c Coordinate) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat && c.Lng >= b.MinLng && c.Lng <= b.MaxLng
}

const (
	// ZoomNoLocation is used while no device position is known.
	ZoomNoLocation = 4
	// ZoomHaveLocation is used once the device position resolved.
	ZoomHaveLocation = 12
)

// DefaultCenter is the world-view fallback when geolocation is unavailable.
var DefaultCenter = Coordinate{Lat: 20, Lng: 78}

// DefaultView is the map view of a fresh draft.
func DefaultView() MapView {
	return MapView{Center: DefaultCenter, Zoom: ZoomNoLocation}
}
