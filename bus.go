package tidepool

// PaletteListener receives the stop colors of every applied gradient.
type PaletteListener interface {
	OnPaletteChanged(colors []RGB)
}

// PointerListener receives pointer positions as fractions of the viewport.
type PointerListener interface {
	OnPointerMoved(x, y float64)
}

// LoadListener is told once that the loading sequence has finished.
type LoadListener interface {
	OnLoadingComplete()
}

// PaletteFunc adapts a function to PaletteListener.
type PaletteFunc func(colors []RGB)

func (f PaletteFunc) OnPaletteChanged(colors []RGB) { f(colors) }

// PointerFunc adapts a function to PointerListener.
type PointerFunc func(x, y float64)

func (f PointerFunc) OnPointerMoved(x, y float64) { f(x, y) }

// LoadFunc adapts a function to LoadListener.
type LoadFunc func()

func (f LoadFunc) OnLoadingComplete() { f() }

// Bus fans application events out to subscribers. Producers never see
// consumer types. Listeners run synchronously in subscription order.
type Bus struct {
	palette []PaletteListener
	pointer []PointerListener
	load    []LoadListener

	lastPalette []RGB
	loaded      bool
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// SubscribePalette registers l for palette changes. If a palette has already
// been published, l receives it immediately.
func (b *Bus) SubscribePalette(l PaletteListener) {
	b.palette = append(b.palette, l)
	if b.lastPalette != nil {
		l.OnPaletteChanged(append([]RGB(nil), b.lastPalette...))
	}
}

// SubscribePointer registers l for pointer moves.
func (b *Bus) SubscribePointer(l PointerListener) {
	b.pointer = append(b.pointer, l)
}

// SubscribeLoad registers l for the loading-complete signal. Subscribing
// after the signal was published calls l at once.
func (b *Bus) SubscribeLoad(l LoadListener) {
	if b.loaded {
		l.OnLoadingComplete()
		return
	}
	b.load = append(b.load, l)
}

// PublishPalette broadcasts colors. Every listener gets its own copy.
func (b *Bus) PublishPalette(colors []RGB) {
	b.lastPalette = append([]RGB(nil), colors...)
	for _, l := range b.palette {
		l.OnPaletteChanged(append([]RGB(nil), colors...))
	}
}

// PublishPointer broadcasts a pointer position in viewport fractions.
func (b *Bus) PublishPointer(x, y float64) {
	for _, l := range b.pointer {
		l.OnPointerMoved(x, y)
	}
}

// PublishLoadingComplete signals loading completion. Only the first call
// has an effect.
func (b *Bus) PublishLoadingComplete() {
	if b.loaded {
		return
	}
	b.loaded = true
	listeners := b.load
	b.load = nil
	for _, l := range listeners {
		l.OnLoadingComplete()
	}
}

// Palette returns a copy of the most recently published palette, or nil.
func (b *Bus) Palette() []RGB {
	if b.lastPalette == nil {
		return nil
	}
	return append([]RGB(nil), b.lastPalette...)
}

// Loaded reports whether loading completion has been published.
func (b *Bus) Loaded() bool {
	return b.loaded
}
