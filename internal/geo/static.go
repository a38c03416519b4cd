package geo

import "github.com/localatlas/bizscout/internal/model"

// staticRegions is the trusted lookup table for major cities. Entries here
// bypass both the geocoder and its rate limiter.
func staticRegions() map[string]*model.Region {
	build := func(south, west, north, east, lat, lon float64) *model.Region {
		r, err := model.NewRegion(south, west, north, east, model.LatLon{Lat: lat, Lon: lon})
		if err != nil {
			panic(err) // table entries are constants; a bad one is a programming error
		}
		return r
	}
	return map[string]*model.Region{
		"karachi":   build(24.5, 66.8, 25.2, 67.2, 24.8607, 67.0011),
		"lahore":    build(31.2, 74.1, 31.8, 74.5, 31.5497, 74.3436),
		"islamabad": build(33.5, 72.8, 33.8, 73.2, 33.6844, 73.0479),
		"sukkur":    build(27.5, 68.6, 27.9, 69.0, 27.7052, 68.8574),
	}
}
