package swaggermcp

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ibrahimsaleem/Swaggermcp/internal/pylang"
)

// Extractor parses source text into function descriptors without executing
// it. Parse results are cached by content hash so repeated uploads of the
// same file skip the lexer and parser.
type Extractor struct {
	cache *lru.Cache[string, *pylang.Module]
}

const extractCacheSize = 64

func NewExtractor() *Extractor {
	cache, err := lru.New[string, *pylang.Module](extractCacheSize)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}
	return &Extractor{cache: cache}
}

// Extract parses source and collects a descriptor per module-top-level
// function, in source order. It returns KindParse for malformed source and
// KindEmptyInput when no top-level functions exist. Duplicate names are all
// returned; the route-table tie-break happens during synthesis.
func (e *Extractor) Extract(source string) (*pylang.Module, []FunctionDescriptor, error) {
	key := sourceHash(source)
	mod, ok := e.cache.Get(key)
	if !ok {
		var err error
		mod, err = pylang.Parse(source)
		if err != nil {
			return nil, nil, AsError(err)
		}
		e.cache.Add(key, mod)
	}

	descriptors := Describe(mod)
	if len(descriptors) == 0 {
		return nil, nil, NewError(KindEmptyInput, "no top-level functions found in the provided source")
	}
	return mod, descriptors, nil
}

// Describe walks only the top-level statement list of a parsed module and
// records signature metadata for each function definition. Function bodies
// are not inspected; nested defs stay invisible.
func Describe(mod *pylang.Module) []FunctionDescriptor {
	var out []FunctionDescriptor
	for _, stmt := range mod.Stmts {
		fd, ok := stmt.(*pylang.FuncDef)
		if !ok {
			continue
		}
		d := FunctionDescriptor{
			Name:       fd.Name,
			DocSummary: docSummary(fd.Doc),
			SpanStart:  fd.Span.Start,
			SpanEnd:    fd.Span.End,
		}
		for _, p := range fd.Params {
			d.Parameters = append(d.Parameters, ParameterDescriptor{
				Name:        p.Name,
				HasDefault:  p.Default != nil,
				DefaultRepr: p.DefaultText,
				TypeHint:    p.Annotation,
			})
		}
		out = append(out, d)
	}
	return out
}

func sourceHash(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}
