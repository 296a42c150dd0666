package model

// Decorator enriches a modal configuration after it has been loaded, before it
// is cached by the registry.
type Decorator interface {
	Decorate(*ModalConfig) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*ModalConfig) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(cfg *ModalConfig) error {
	return fn(cfg)
}
