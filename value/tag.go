// Package value implements the tagged value handle and typed-view surface
// that every other qjsgo package builds on: a Value pairs a *goja.Runtime
// (standing in for the engine's realm pointer) with a raw goja.Value and a
// cached Tag, and typed views (Object, Array, Function, ...) are zero-cost
// wrappers asserting a particular Tag.
package value

// Tag identifies the concrete kind of a Value. The zero Tag, TagUninitialized,
// marks a zero Value as recognizably invalid; Of produces it only for a nil
// goja.Value or a primitive whose kind it does not recognize.
type Tag uint8

const (
	TagUninitialized Tag = iota
	TagUndefined
	TagNull
	TagBool
	TagInt
	TagFloat
	TagString
	TagSymbol
	TagObject
	TagArray
	TagFunction
	TagConstructor
	TagException
	TagModule
	TagBigInt
)

func (t Tag) String() string {
	switch t {
	case TagUndefined:
		return "undefined"
	case TagNull:
		return "null"
	case TagBool:
		return "bool"
	case TagInt:
		return "int"
	case TagFloat:
		return "float"
	case TagString:
		return "string"
	case TagSymbol:
		return "symbol"
	case TagObject:
		return "object"
	case TagArray:
		return "array"
	case TagFunction:
		return "function"
	case TagConstructor:
		return "constructor"
	case TagException:
		return "exception"
	case TagModule:
		return "module"
	case TagBigInt:
		return "big_int"
	default:
		return "uninitialized"
	}
}

// interpretableAs embeds the "is-a" relation from spec §4.D: Array,
// Function, Constructor, Exception and Module all additionally satisfy
// Object; Int additionally satisfies Float; Function additionally
// satisfies Constructor.
func (t Tag) interpretableAs(want Tag) bool {
	if t == want {
		return true
	}
	switch want {
	case TagObject:
		switch t {
		case TagArray, TagFunction, TagConstructor, TagException, TagModule:
			return true
		}
	case TagFloat:
		return t == TagInt
	case TagConstructor:
		return t == TagFunction
	}
	return false
}
