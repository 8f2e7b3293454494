package metrics

// Layout groups the metrics of the keyboard layout service.
type Layout struct {
	Reloads   *Counter
	Unchanged *Counter
	Fallbacks *Counter
	Resolves  *Counter

	Version   *Gauge
	Keymapp   *Gauge
	Connected *Gauge

	ReloadDuration *Histogram
}

// NewLayout registers the layout service metrics on r.
func NewLayout(r *Registry) *Layout {
	return &Layout{
		Reloads:        r.Counter("layout_reloads_total", "Layout reload attempts.", nil),
		Unchanged:      r.Counter("layout_reloads_unchanged_total", "Reloads that found the active document.", nil),
		Fallbacks:      r.Counter("layout_fallbacks_total", "Reloads that published the standard layout.", nil),
		Resolves:       r.Counter("sequence_resolves_total", "Key sequences resolved.", nil),
		Version:        r.Gauge("layout_version", "Version of the published layout.", nil),
		Keymapp:        r.Gauge("layout_from_keymapp", "1 when the active layout came from Keymapp.", nil),
		Connected:      r.Gauge("keyboard_connected", "1 while a ZSA keyboard is plugged in.", nil),
		ReloadDuration: r.Histogram("layout_reload_seconds", "Time spent loading and decoding a layout.", nil, nil),
	}
}
