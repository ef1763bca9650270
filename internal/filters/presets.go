package filters

import (
	"fmt"
	"sort"
)

// Name identifies a preset.
type Name string

// Preset names.
const (
	BassBoost  Name = "bassboost"
	Distort    Name = "distort"
	EightD     Name = "eightD"
	KaraokeFX  Name = "karaoke"
	Nightcore  Name = "nightcore"
	Slowmo     Name = "slowmo"
	Soft       Name = "soft"
	TrebleBass Name = "trebleBass"
	TV         Name = "tv"
	Vaporwave  Name = "vaporwave"
)

// Names returns every preset name in sorted order.
func Names() []Name {
	names := make([]Name, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// ParseName matches s against the preset names.
func ParseName(s string) (Name, error) {
	if _, ok := presets[Name(s)]; ok {
		return Name(s), nil
	}
	return "", fmt.Errorf("unknown filter %q (available: %v)", s, Names())
}

// preset mutates the payload in place.
type preset func(p *Payload)

var presets = map[Name]preset{
	BassBoost:  func(p *Payload) { p.Equalizer = bands(bassBoostEqualizer) },
	Soft:       func(p *Payload) { p.Equalizer = bands(softEqualizer) },
	TV:         func(p *Payload) { p.Equalizer = bands(tvEqualizer) },
	TrebleBass: func(p *Payload) { p.Equalizer = bands(trebleBassEqualizer) },
	EightD:     func(p *Payload) { p.Rotation = &Rotation{RotationHz: 0.2} },
	Nightcore:  func(p *Payload) { p.Timescale = &Timescale{Speed: 1.1, Pitch: 1.125, Rate: 1.05} },
	Slowmo:     func(p *Payload) { p.Timescale = &Timescale{Speed: 0.7, Pitch: 1.0, Rate: 0.8} },
	Vaporwave: func(p *Payload) {
		p.Equalizer = bands(vaporwaveEqualizer)
		p.Timescale = &Timescale{Pitch: 0.55}
	},
	Distort: func(p *Payload) {
		p.Distortion = &Distortion{SinScale: 0.2, CosScale: 0.2, TanScale: 0.2, Scale: 1.2}
	},
	KaraokeFX: func(p *Payload) {
		p.Karaoke = &Karaoke{Level: 1.0, MonoLevel: 1.0, FilterBand: 220.0, FilterWidth: 100.0}
	},
}

func bands(src []Band) []Band {
	return append([]Band(nil), src...)
}

var bassBoostEqualizer = []Band{
	{0, 0.2}, {1, 0.15}, {2, 0.1}, {3, 0.05}, {4, 0.0},
	{5, -0.05}, {6, -0.1}, {7, -0.1}, {8, -0.1}, {9, -0.1},
	{10, -0.1}, {11, -0.1}, {12, -0.1}, {13, -0.1}, {14, -0.1},
}

var softEqualizer = []Band{
	{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}, {5, 0}, {6, 0},
	{7, 0}, {8, -0.25}, {9, -0.25}, {10, -0.25}, {11, -0.25}, {12, -0.25}, {13, -0.25},
}

var tvEqualizer = []Band{
	{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}, {5, 0}, {6, 0},
	{7, 0.65}, {8, 0.65}, {9, 0.65}, {10, 0.65}, {11, 0.65}, {12, 0.65}, {13, 0.65},
}

var trebleBassEqualizer = []Band{
	{0, 0.6}, {1, 0.67}, {2, 0.67}, {3, 0}, {4, -0.5}, {5, 0.15}, {6, -0.45},
	{7, 0.23}, {8, 0.35}, {9, 0.45}, {10, 0.55}, {11, 0.6}, {12, 0.55}, {13, 0},
}

var vaporwaveEqualizer = []Band{
	{0, 0.3}, {1, 0.3},
}
