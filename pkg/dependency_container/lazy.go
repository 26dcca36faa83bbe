package dependency_container

import "sync"

// Lazy builds a value at most once. Later calls return the first result,
// including its error.
type Lazy[T any] struct {
	once  sync.Once
	build func() (T, error)
	value T
	err   error
}

func NewLazy[T any](build func() (T, error)) *Lazy[T] {
	return &Lazy[T]{build: build}
}

func (l *Lazy[T]) Get() (T, error) {
	l.once.Do(func() {
		l.value, l.err = l.build()
	})
	return l.value, l.err
}
