package component

// Binder activates the directive layer (event listeners, reactive bindings) for
// a mounted component.
type Binder interface {
	Bind(c *Component) (Binding, error)
}

// Binding is an active directive layer. Release must drop every listener it registered.
type Binding interface {
	Release()
}

// BinderFunc adapts a function to Binder.
type BinderFunc func(c *Component) (Binding, error)

func (f BinderFunc) Bind(c *Component) (Binding, error) { return f(c) }

// ReleaseFunc adapts a function to Binding.
type ReleaseFunc func()

func (f ReleaseFunc) Release() { f() }
