package atom

// Predefined atom ids. These are interned in this exact order by NewTable,
// so their ids are stable across every Table instance within a process;
// code that wants to compare against one of them can use the package-level
// vars below instead of re-interning the string.
var (
	PrototypeAtom  Atom
	ConstructorAtom Atom
	LengthAtom     Atom
	NameAtom       Atom
	MessageAtom    Atom
	StackAtom      Atom
	ValueAtom      Atom
	ValueOfAtom    Atom
	ToStringAtom   Atom
	ToJSONAtom     Atom
	NextAtom       Atom
	DoneAtom       Atom
	ThenAtom       Atom
	CatchAtom      Atom
	FinallyAtom    Atom
	DefaultAtom    Atom
	FileNameAtom   Atom
	LineNumberAtom Atom
)

// predefinedNames lists every well-known string atom in interning order.
// The index of a name here (plus 1, since id 0 is reserved) is its stable
// Atom id across every Table.
var predefinedNames = []string{
	"prototype",
	"constructor",
	"length",
	"name",
	"message",
	"stack",
	"value",
	"valueOf",
	"toString",
	"toJSON",
	"next",
	"done",
	"then",
	"catch",
	"finally",
	"default",
	"fileName",
	"lineNumber",
}

func init() {
	for i, name := range predefinedNames {
		id := Atom{uint32(i + 1)}
		switch name {
		case "prototype":
			PrototypeAtom = id
		case "constructor":
			ConstructorAtom = id
		case "length":
			LengthAtom = id
		case "name":
			NameAtom = id
		case "message":
			MessageAtom = id
		case "stack":
			StackAtom = id
		case "value":
			ValueAtom = id
		case "valueOf":
			ValueOfAtom = id
		case "toString":
			ToStringAtom = id
		case "toJSON":
			ToJSONAtom = id
		case "next":
			NextAtom = id
		case "done":
			DoneAtom = id
		case "then":
			ThenAtom = id
		case "catch":
			CatchAtom = id
		case "finally":
			FinallyAtom = id
		case "default":
			DefaultAtom = id
		case "fileName":
			FileNameAtom = id
		case "lineNumber":
			LineNumberAtom = id
		}
	}
}
