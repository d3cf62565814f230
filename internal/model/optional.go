package model

// Optional is a lookup result that separates "absent" from errors.
type Optional[V any] struct {
	value   V
	present bool
}

func Some[V any](v V) Optional[V] {
	return Optional[V]{value: v, present: true}
}

func None[V any]() Optional[V] {
	return Optional[V]{}
}

func (o Optional[V]) Get() (V, bool) {
	return o.value, o.present
}

func (o Optional[V]) IsPresent() bool {
	return o.present
}

// OrElse returns the value if present, def otherwise.
func (o Optional[V]) OrElse(def V) V {
	if !o.present {
		return def
	}
	return o.value
}
