package report

import "regexp"

// Entry is a word found in the source with a one-line description.
type Entry struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
}

var wordPattern = regexp.MustCompile(`\w+`)

var keywords = []Entry{
	{"False", "boolean false"},
	{"True", "boolean true"},
	{"None", "the absence of a value"},
	{"and", "logical and"},
	{"or", "logical or"},
	{"not", "logical negation"},
	{"is", "identity comparison"},
	{"in", "membership test, or the iterable of a for loop"},
	{"as", "binds an alias in import, with and except"},
	{"assert", "fails when a condition is false"},
	{"async", "declares a coroutine or asynchronous loop/context"},
	{"await", "waits for an awaitable to finish"},
	{"break", "leaves the innermost loop"},
	{"continue", "skips to the next loop iteration"},
	{"class", "defines a class"},
	{"def", "defines a function"},
	{"del", "deletes a name, item or attribute"},
	{"elif", "else-if branch of a conditional"},
	{"else", "fallback branch of if, for, while or try"},
	{"except", "handles an exception"},
	{"finally", "runs whether or not an exception occurred"},
	{"for", "iterates over an iterable"},
	{"from", "imports names from a module"},
	{"global", "binds a name in the module scope"},
	{"nonlocal", "binds a name in the enclosing function scope"},
	{"if", "conditional branch"},
	{"import", "imports a module"},
	{"lambda", "anonymous function expression"},
	{"pass", "does nothing"},
	{"raise", "raises an exception"},
	{"return", "returns a value from a function"},
	{"try", "starts a block with exception handling"},
	{"while", "loops while a condition holds"},
	{"with", "runs a block inside a context manager"},
	{"yield", "produces a value from a generator"},
}

var builtinFunctions = []Entry{
	{"abs", "absolute value"},
	{"all", "true if every element is true"},
	{"any", "true if some element is true"},
	{"ascii", "printable representation with escapes"},
	{"bin", "binary string of an integer"},
	{"bool", "converts to a boolean"},
	{"bytearray", "mutable byte sequence"},
	{"bytes", "immutable byte sequence"},
	{"callable", "true if the object can be called"},
	{"chr", "character for a code point"},
	{"classmethod", "turns a method into a class method"},
	{"compile", "compiles source into a code object"},
	{"complex", "creates a complex number"},
	{"delattr", "deletes an attribute"},
	{"dict", "creates a dictionary"},
	{"dir", "lists the names of an object"},
	{"divmod", "quotient and remainder"},
	{"enumerate", "pairs items with their index"},
	{"eval", "evaluates an expression string"},
	{"exec", "executes a code string"},
	{"filter", "keeps the items matching a predicate"},
	{"float", "converts to a floating point number"},
	{"format", "formats a value"},
	{"frozenset", "immutable set"},
	{"getattr", "reads an attribute by name"},
	{"globals", "dictionary of the module namespace"},
	{"hasattr", "true if the attribute exists"},
	{"hash", "hash value of an object"},
	{"help", "interactive help"},
	{"hex", "hexadecimal string of an integer"},
	{"id", "identity of an object"},
	{"input", "reads a line from standard input"},
	{"int", "converts to an integer"},
	{"isinstance", "checks the type of an object"},
	{"issubclass", "checks class inheritance"},
	{"iter", "returns an iterator"},
	{"len", "number of items"},
	{"list", "creates a list"},
	{"locals", "dictionary of the local namespace"},
	{"map", "applies a function to every item"},
	{"max", "largest item"},
	{"memoryview", "buffer view over bytes"},
	{"min", "smallest item"},
	{"next", "next item of an iterator"},
	{"object", "the base class of all classes"},
	{"oct", "octal string of an integer"},
	{"open", "opens a file"},
	{"ord", "code point of a character"},
	{"pow", "power"},
	{"print", "writes to standard output"},
	{"property", "managed attribute"},
	{"range", "sequence of integers"},
	{"repr", "developer representation of an object"},
	{"reversed", "reverse iterator"},
	{"round", "rounds a number"},
	{"set", "creates a set"},
	{"setattr", "sets an attribute by name"},
	{"slice", "slice object"},
	{"sorted", "sorted list of the items"},
	{"staticmethod", "turns a method into a static method"},
	{"str", "converts to a string"},
	{"sum", "sum of the items"},
	{"super", "proxy to the parent class"},
	{"tuple", "creates a tuple"},
	{"type", "type of an object, or creates a class"},
	{"vars", "the __dict__ of an object"},
	{"zip", "iterates several iterables in parallel"},
	{"__import__", "low-level import function"},
}

// Glossary returns the keywords and builtin functions that occur as whole
// words in code, each list in reference order.
func Glossary(code []byte) (kw, builtins []Entry) {
	words := make(map[string]struct{})
	for _, w := range wordPattern.FindAll(code, -1) {
		words[string(w)] = struct{}{}
	}
	pick := func(table []Entry) []Entry {
		var out []Entry
		for _, e := range table {
			if _, ok := words[e.Word]; ok {
				out = append(out, e)
			}
		}
		return out
	}
	return pick(keywords), pick(builtinFunctions)
}
