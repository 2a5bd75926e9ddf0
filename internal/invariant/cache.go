package invariant

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/dekarrin/rezi"

	"github.com/dekarrin/ltlplan/internal/state"
)

// Cache is an on-disk, content-addressed store of one-shot invariant
// extraction results, keyed by a hash of the domain's source, so repeat
// compilations of the same domain skip the external SAS⁺ call. Entries
// are rezi-encoded binary files.
type Cache struct {
	Dir string
}

// NewCache returns a Cache rooted at dir, creating it if necessary.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Cache{Dir: dir}, nil
}

// Key derives the cache key for a domain's raw source text: a domain is
// extracted once per distinct content, regardless of file path.
func Key(domainSrc string) string {
	sum := sha256.Sum256([]byte(domainSrc))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.Dir, key+".rezi")
}

// Get returns the cached Result for key, if present.
func (c *Cache) Get(key string) (Result, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return Result{}, false
	}
	var wire wireResult
	if _, err := rezi.DecBinary(data, &wire); err != nil {
		return Result{}, false
	}
	return wire.toResult(), true
}

// Put stores result under key, overwriting any prior entry.
func (c *Cache) Put(key string, result Result) error {
	wire := fromResult(result)
	data := rezi.EncBinary(&wire)
	return os.WriteFile(c.path(key), data, 0644)
}

// wireResult is Result's on-disk shape: a plain JSON-encodable mirror, so
// that MarshalBinary/UnmarshalBinary (what rezi.EncBinary/DecBinary require
// of their argument, per encoding.BinaryMarshaler/BinaryUnmarshaler) reduce
// to a single json.Marshal/Unmarshal call rather than a hand-rolled field
// codec.
type wireResult struct {
	Singletons []string
	Patterns   []wirePattern
}

type wirePattern struct {
	PName, QName      string
	PArity, QArity    int
	Shared, Different []wirePos
}

type wirePos struct{ A, B int }

func fromResult(r Result) wireResult {
	w := wireResult{}
	for name := range r.Singletons {
		w.Singletons = append(w.Singletons, name)
	}
	for _, p := range r.Patterns {
		wp := wirePattern{PName: p.P.Name, PArity: p.P.Arity, QName: p.Q.Name, QArity: p.Q.Arity}
		for _, pp := range p.Shared {
			wp.Shared = append(wp.Shared, wirePos{A: pp.A, B: pp.B})
		}
		for _, pp := range p.Different {
			wp.Different = append(wp.Different, wirePos{A: pp.A, B: pp.B})
		}
		w.Patterns = append(w.Patterns, wp)
	}
	return w
}

func (w wireResult) toResult() Result {
	r := Result{Singletons: map[string]bool{}}
	for _, name := range w.Singletons {
		r.Singletons[name] = true
	}
	for _, wp := range w.Patterns {
		p := state.Pattern{
			P: state.PredRef{Name: wp.PName, Arity: wp.PArity},
			Q: state.PredRef{Name: wp.QName, Arity: wp.QArity},
		}
		for _, pp := range wp.Shared {
			p.Shared = append(p.Shared, state.PosPair{A: pp.A, B: pp.B})
		}
		for _, pp := range wp.Different {
			p.Different = append(p.Different, state.PosPair{A: pp.A, B: pp.B})
		}
		r.Patterns = append(r.Patterns, p)
	}
	return r
}

func (w *wireResult) MarshalBinary() ([]byte, error) {
	return json.Marshal(w)
}

func (w *wireResult) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, w)
}
