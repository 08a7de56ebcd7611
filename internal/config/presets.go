package config

import "sort"

func overshoot(name string, velocity, amplitude, frequency, decay float64) OscillatorSpec {
	return OscillatorSpec{
		Kind: KindOvershoot, Name: name,
		Velocity: velocity, Amplitude: amplitude, Frequency: frequency, Decay: decay,
	}
}

func spring(name string, frequency, damping, target float64) OscillatorSpec {
	return OscillatorSpec{
		Kind: KindSpring, Name: name,
		FPS: DefaultFrameRate, AngularFrequency: frequency, Damping: damping, Target: target,
	}
}

func preset(oscs ...OscillatorSpec) *Config {
	cfg := DefaultConfig()
	cfg.Oscillators = oscs
	return cfg
}

var Presets = map[string]*Config{
	"bounce": preset(overshoot("bounce", 1, 1, 2, 3)),
	"wobble": preset(overshoot("wobble", 1, 0.6, 6, 1.5)),
	"snappy": preset(overshoot("snappy", 1, 1.2, 4, 8)),
	"slow":   preset(overshoot("slow", 0.5, 1, 0.5, 0.4)),
	"pair": preset(
		overshoot("left", 1, 1, 2, 3),
		overshoot("right", -1, 1, 3, 2),
	),
	"springs": preset(
		spring("stiff", 12, 0.9, 1),
		spring("loose", 4, 0.2, 1),
	),
	"mixed": preset(
		overshoot("overshoot", 1, 1, 2, 3),
		spring("spring", 6, 0.5, 1),
	),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *cfg
	cp.Oscillators = append([]OscillatorSpec(nil), cfg.Oscillators...)
	return &cp
}

// ListPresets returns preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
