package value

// IsNull, IsUndefined, etc. mirror spec §4.D's predicate set, implemented
// against the cached Tag rather than re-inspecting the raw goja.Value.

func (v Value) IsUninitialized() bool { return v.tag == TagUninitialized }
func (v Value) IsNull() bool          { return v.tag == TagNull }
func (v Value) IsUndefined() bool     { return v.tag == TagUndefined }
func (v Value) IsBool() bool          { return v.tag == TagBool }
func (v Value) IsInt() bool           { return v.tag == TagInt }
func (v Value) IsFloat() bool         { return v.tag == TagFloat }
func (v Value) IsNumber() bool        { return v.tag.interpretableAs(TagFloat) }
func (v Value) IsString() bool        { return v.tag == TagString }
func (v Value) IsSymbol() bool        { return v.tag == TagSymbol }
func (v Value) IsObject() bool        { return v.tag.interpretableAs(TagObject) }
func (v Value) IsArray() bool         { return v.tag == TagArray }
func (v Value) IsFunction() bool      { return v.tag == TagFunction }
func (v Value) IsConstructor() bool   { return v.tag.interpretableAs(TagConstructor) }
func (v Value) IsException() bool     { return v.tag == TagException }
func (v Value) IsError() bool         { return v.tag == TagException }
func (v Value) IsModule() bool        { return v.tag == TagModule }
func (v Value) IsBigInt() bool        { return v.tag == TagBigInt }

// Is reports whether v's tag satisfies want under the spec's
// "interpretable as" relation (e.g. an Array Is TagObject).
func (v Value) Is(want Tag) bool { return v.tag.interpretableAs(want) }
