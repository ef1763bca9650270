package filters

// Band is one equalizer band. Gain ranges from -0.25 to 1.0.
type Band struct {
	Band int     `json:"band"`
	Gain float64 `json:"gain"`
}

// Timescale changes playback speed, pitch and rate. Zero fields are omitted.
type Timescale struct {
	Speed float64 `json:"speed,omitempty"`
	Pitch float64 `json:"pitch,omitempty"`
	Rate  float64 `json:"rate,omitempty"`
}

// Vibrato oscillates pitch.
type Vibrato struct {
	Frequency float64 `json:"frequency"`
	Depth     float64 `json:"depth"`
}

// Rotation pans audio around the listener.
type Rotation struct {
	RotationHz float64 `json:"rotationHz"`
}

// Karaoke suppresses a frequency band, usually vocals.
type Karaoke struct {
	Level       float64 `json:"level,omitempty"`
	MonoLevel   float64 `json:"monoLevel,omitempty"`
	FilterBand  float64 `json:"filterBand,omitempty"`
	FilterWidth float64 `json:"filterWidth,omitempty"`
}

// Distortion applies trigonometric distortion.
type Distortion struct {
	SinOffset float64 `json:"sinOffset"`
	SinScale  float64 `json:"sinScale"`
	CosOffset float64 `json:"cosOffset"`
	CosScale  float64 `json:"cosScale"`
	TanOffset float64 `json:"tanOffset"`
	TanScale  float64 `json:"tanScale"`
	Offset    float64 `json:"offset"`
	Scale     float64 `json:"scale"`
}

// Payload is the complete filter state sent on every update.
// Nil sections encode as null, meaning "filter off".
type Payload struct {
	Distortion *Distortion `json:"distortion"`
	Equalizer  []Band      `json:"equalizer"`
	Karaoke    *Karaoke    `json:"karaoke"`
	Rotation   *Rotation   `json:"rotation"`
	Timescale  *Timescale  `json:"timescale"`
	Vibrato    *Vibrato    `json:"vibrato"`
	Volume     float64     `json:"volume"`
}

// DefaultVolume is the volume of a cleared filter state.
const DefaultVolume = 1.0

// clone returns a copy that shares no pointers with p.
func (p Payload) clone() Payload {
	out := Payload{Volume: p.Volume, Equalizer: append([]Band{}, p.Equalizer...)}
	if p.Distortion != nil {
		d := *p.Distortion
		out.Distortion = &d
	}
	if p.Karaoke != nil {
		k := *p.Karaoke
		out.Karaoke = &k
	}
	if p.Rotation != nil {
		r := *p.Rotation
		out.Rotation = &r
	}
	if p.Timescale != nil {
		ts := *p.Timescale
		out.Timescale = &ts
	}
	if p.Vibrato != nil {
		v := *p.Vibrato
		out.Vibrato = &v
	}
	return out
}
