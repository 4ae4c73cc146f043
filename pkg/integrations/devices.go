package integrations

import (
	"sort"
)

// Device is a reading device profile. Pages optimized for it fit its screen.
type Device struct {
	Name      string
	Width     int  // Screen width in pixels
	Height    int  // Screen height in pixels
	DPI       int  // Dots per inch
	Grayscale bool // E-ink panel
}

// Devices lists the known profiles by id.
var Devices = map[string]Device{
	"kindle": {
		Name:      "Kindle Basic (10th gen)",
		Width:     758,
		Height:    1024,
		DPI:       167,
		Grayscale: true,
	},
	"kindle-paperwhite": {
		Name:      "Kindle Paperwhite 1/2",
		Width:     758,
		Height:    1024,
		DPI:       212,
		Grayscale: true,
	},
	"kindle-paperwhite3": {
		Name:      "Kindle Paperwhite 3/4",
		Width:     1072,
		Height:    1448,
		DPI:       300,
		Grayscale: true,
	},
	"kindle-oasis": {
		Name:      "Kindle Oasis 3",
		Width:     1264,
		Height:    1680,
		DPI:       300,
		Grayscale: true,
	},
	"kindle-scribe": {
		Name:      "Kindle Scribe",
		Width:     1860,
		Height:    2480,
		DPI:       300,
		Grayscale: true,
	},
	"kobo-clara": {
		Name:      "Kobo Clara HD",
		Width:     1072,
		Height:    1448,
		DPI:       300,
		Grayscale: true,
	},
	"kobo-libra": {
		Name:      "Kobo Libra 2",
		Width:     1264,
		Height:    1680,
		DPI:       300,
		Grayscale: true,
	},
	"tablet": {
		Name:      "Generic 10\" tablet",
		Width:     1600,
		Height:    2560,
		DPI:       300,
		Grayscale: false,
	},
}

// GetDevice returns the device profile for a given device id.
func GetDevice(id string) (Device, bool) {
	device, ok := Devices[id]
	return device, ok
}

// ListDevices returns "id: name" for every profile, sorted by id.
func ListDevices() []string {
	ids := make([]string, 0, len(Devices))
	for id := range Devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id + ": " + Devices[id].Name
	}
	return out
}

// OptimizeSettings returns recommended page settings for the device.
func (d Device) OptimizeSettings() OptimizeSettings {
	settings := OptimizeSettings{
		MaxWidth:  d.Width,
		MaxHeight: d.Height,
		Quality:   85,
		Grayscale: d.Grayscale,
		Contrast:  1.0,
	}

	// High DPI devices can use better quality
	if d.DPI >= 300 {
		settings.Quality = 90
	}
	// Slightly boost contrast for e-ink
	if d.Grayscale {
		settings.Contrast = 1.1
	}
	return settings
}
