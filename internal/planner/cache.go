package planner

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dekarrin/ltlplan/internal/domain"
	"github.com/dekarrin/ltlplan/internal/state"
	"github.com/dekarrin/ltlplan/internal/symbol"
	"github.com/hashicorp/go-memdb"
)

// Entry is one row of the schema-level goal cache: Key is the
// normalised goal's serialised form, Graph is the abstract state graph
// explored for it (still expressed over the goal's ?argN placeholders,
// never denormalised; emission substitutes a goal's concrete objects
// back in at walk time), and Seq records insertion order so a
// compilation's cache can be replayed deterministically for
// inspection/logging.
type Entry struct {
	Key   string
	Graph *Graph
	Seq   int
}

// cacheSchema is the go-memdb schema backing Cache: one table, indexed by
// cache key (the lookup path) and by insertion sequence (the replay path).
func cacheSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			"entry": {
				Name: "entry",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Key"},
					},
					"seq": {
						Name:    "seq",
						Unique:  true,
						Indexer: &memdb.IntFieldIndex{Field: "Seq"},
					},
				},
			},
		},
	}
}

// Cache is the schema-level goal cache threaded through one compilation
// task: owned by the compilation, mutated only by the planner's own inner
// loop, so no locking.
type Cache struct {
	db   *memdb.MemDB
	next int
}

// NewCache constructs an empty schema-level cache.
func NewCache() *Cache {
	db, err := memdb.NewMemDB(cacheSchema())
	if err != nil {
		panic(fmt.Sprintf("planner: invalid cache schema: %v", err))
	}
	return &Cache{db: db}
}

func (c *Cache) get(key string) (*Graph, bool) {
	txn := c.db.Txn(false)
	defer txn.Abort()
	raw, err := txn.First("entry", "id", key)
	if err != nil || raw == nil {
		return nil, false
	}
	return raw.(*Entry).Graph, true
}

func (c *Cache) put(key string, g *Graph) {
	txn := c.db.Txn(true)
	txn.Insert("entry", &Entry{Key: key, Graph: g, Seq: c.next})
	txn.Commit()
	c.next++
}

// Entries returns every cached (key, graph) pair in insertion order.
func (c *Cache) Entries() []Entry {
	txn := c.db.Txn(false)
	defer txn.Abort()
	it, err := txn.Get("entry", "seq")
	if err != nil {
		return nil
	}
	var out []Entry
	for raw := it.Next(); raw != nil; raw = it.Next() {
		out = append(out, *raw.(*Entry))
	}
	return out
}

// isReservedConstant reports whether a ground term is exempt from the
// cache key's positional normalisation: numbers and quoted strings are
// values, not objects, and must stay concrete in the key.
func isReservedConstant(name string) bool {
	if name == "" {
		return false
	}
	if strings.HasPrefix(name, `"`) {
		return true
	}
	if _, err := strconv.ParseFloat(name, 64); err == nil {
		return true
	}
	return false
}

// ObjectMap is the per-invocation binding from a cached abstract graph's
// goal placeholders (?arg0, ?arg1, ...) back to the concrete objects of
// one particular goal.
type ObjectMap map[string]symbol.Term

// normalizeGoal replaces every non-reserved constant in goal with a
// positional placeholder variable in first-occurrence order, returning
// the normalised atom list, its serialised cache key, and the object map
// needed to substitute the goal's real constants back into rules emitted
// from the (possibly shared) cached graph.
func normalizeGoal(goal []symbol.Atom) ([]symbol.Atom, string, ObjectMap) {
	objToVar := map[string]symbol.Term{}
	varToObj := ObjectMap{}
	next := 0

	normalized := make([]symbol.Atom, len(goal))
	for gi, a := range goal {
		args := make([]symbol.Term, len(a.Args))
		for i, t := range a.Args {
			if t.IsVar || isReservedConstant(t.Name) {
				args[i] = t
				continue
			}
			v, ok := objToVar[t.Name]
			if !ok {
				v = symbol.Var(fmt.Sprintf("?arg%d", next))
				next++
				objToVar[t.Name] = v
				varToObj[v.Name] = t
			}
			args[i] = v
		}
		normalized[gi] = symbol.Atom{Predicate: a.Predicate, Args: args, Negated: a.Negated}
	}

	sorted := append([]symbol.Atom(nil), normalized...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })
	var key strings.Builder
	for _, a := range sorted {
		key.WriteString(a.String())
		key.WriteByte(';')
	}
	return normalized, key.String(), varToObj
}

// Denormalize substitutes a goal invocation's concrete objects back into
// a rule's atoms/terms drawn from a cached abstract graph, so two goals
// sharing one graph yield logically equivalent rules under their own
// constant mappings.
func (m ObjectMap) Denormalize(atoms []symbol.Atom) []symbol.Atom {
	if len(m) == 0 {
		return atoms
	}
	out := make([]symbol.Atom, len(atoms))
	for i, a := range atoms {
		args := make([]symbol.Term, len(a.Args))
		for j, t := range a.Args {
			if t.IsVar {
				if obj, ok := m[t.Name]; ok {
					args[j] = obj
					continue
				}
			}
			args[j] = t
		}
		out[i] = symbol.Atom{Predicate: a.Predicate, Args: args, Negated: a.Negated}
	}
	return out
}

// DenormalizeTerm substitutes m into a single term.
func (m ObjectMap) DenormalizeTerm(t symbol.Term) symbol.Term {
	if t.IsVar {
		if obj, ok := m[t.Name]; ok {
			return obj
		}
	}
	return t
}

// Search is the cached entry point for the planner: goal is a conjunction
// of ground atoms (one disjunct of one DFA partition's decoded label). It
// returns the (possibly shared) abstract state graph rooted at goal's
// normalised form, the object map to denormalise rules emitted from it,
// and search statistics.
func (c *Cache) Search(goal []symbol.Atom, dom domain.Domain, patterns []state.Pattern, singletons map[string]bool, budget Budget) (*Graph, ObjectMap, Stats) {
	normalized, key, objMap := normalizeGoal(goal)

	if g, hit := c.get(key); hit {
		c.proactiveCache(goal, dom, patterns, singletons, budget)
		return g, objMap, Stats{StatesExplored: len(g.States), Transitions: len(g.Edges), CacheHit: true, Truncated: g.Truncated}
	}

	// The root keeps normalizeGoal's ?argN placeholder names, so objMap's
	// keys line up with the stored graph's own variables at emission time.
	// Its counter still starts past the placeholder count so every state's
	// MaxVar stays monotone along regression edges.
	root := state.New(normalized, nil, 0, len(objMap))
	g := explore(root, dom, patterns, singletons, budget)
	c.put(key, g)

	c.proactiveCache(goal, dom, patterns, singletons, budget)

	return g, objMap, Stats{StatesExplored: len(g.States), Transitions: len(g.Edges), CacheHit: false, Truncated: g.Truncated}
}

// proactiveCache explores and caches every single-atom constituent of a
// multi-atom goal, so that a later single-atom goal sharing one of them
// benefits even though its containing multi-atom goal differed.
func (c *Cache) proactiveCache(goal []symbol.Atom, dom domain.Domain, patterns []state.Pattern, singletons map[string]bool, budget Budget) {
	if len(goal) < 2 {
		return
	}
	for _, atom := range goal {
		single, key, singleMap := normalizeGoal([]symbol.Atom{atom})
		if _, hit := c.get(key); hit {
			continue
		}
		root := state.New(single, nil, 0, len(singleMap))
		g := explore(root, dom, patterns, singletons, budget)
		c.put(key, g)
	}
}
