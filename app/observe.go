package app

import "sync"

type observer[T any] struct {
	id int
	fn func(T)
}

// observers is an ordered subscriber list shared by both services.
type observers[T any] struct {
	mu   sync.Mutex
	next int
	list []observer[T]
}

func (o *observers[T]) add(fn func(T)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.next++
	id := o.next
	o.list = append(o.list, observer[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			for i := range o.list {
				if o.list[i].id == id {
					o.list = append(o.list[:i:i], o.list[i+1:]...)
					return
				}
			}
		})
	}
}

// publish calls every subscriber in registration order, each with its own copy.
func (o *observers[T]) publish(v T, clone func(T) T) {
	o.mu.Lock()
	list := append([]observer[T](nil), o.list...)
	o.mu.Unlock()
	for _, sub := range list {
		sub.fn(clone(v))
	}
}
