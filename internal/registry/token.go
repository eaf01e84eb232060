package registry

import "fmt"

// Token names one abstract capability. Tokens are comparable values, so two tokens
// built from the same name are equal and can be used as map keys.
type Token struct {
	name string
}

// NewToken creates a token for the named capability.
func NewToken(name string) Token {
	return Token{name: name}
}

// Name returns the capability name.
func (t Token) Name() string {
	return t.name
}

// String implements fmt.Stringer.
func (t Token) String() string {
	return t.name
}

// Lifecycle controls how long a resolved instance lives.
type Lifecycle int

const (
	// Singleton bindings invoke their factory once and return the cached instance afterwards.
	Singleton Lifecycle = iota + 1
	// Transient bindings invoke their factory on every resolution.
	Transient
)

// String returns the lifecycle name.
func (l Lifecycle) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Transient:
		return "transient"
	default:
		return fmt.Sprintf("lifecycle(%d)", int(l))
	}
}

func (l Lifecycle) valid() bool {
	return l == Singleton || l == Transient
}
