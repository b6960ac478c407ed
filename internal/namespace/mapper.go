package namespace

import (
	"fmt"
	"path"
)

// Catalogue is the minimal projection input: the (vertical, field, object)
// tuple. It deliberately does not import internal/schema to keep this
// package leaf-level and independently testable.
type Catalogue struct {
	Vertical string
	Field    string
	Object   string
}

// Projection is one target language's full set of identifiers and paths.
type Projection struct {
	Target       Target
	Path         string // language-conventional dotted/scoped/slash path
	ModuleSymbol string // the type/class/module symbol name
	FileName     string // bare file name (no directory)
	FilePath     string // FileName joined under Path, relative to the target's output subtree
}

// NamespaceMap holds all five projections for one catalogue entry.
type NamespaceMap struct {
	Catalogue Catalogue
	ByTarget  map[Target]Projection
}

// CollisionError reports that a projected identifier collides with a
// target language's reserved word list. The validator surfaces this as
// an IdentifierIllegal error.
type CollisionError struct {
	Target Target
	Token  string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("namespace: %q collides with a reserved word in target %q", e.Token, e.Target)
}

// Map projects a catalogue tuple into all five target namespaces. It
// returns a CollisionError (wrapping the first detected collision) if any
// projected identifier is reserved in its target language.
func Map(c Catalogue) (*NamespaceMap, error) {
	vertical := ToSnakeCase(c.Vertical)
	field := ToSnakeCase(c.Field)
	objectSnake := ToSnakeCase(c.Object)
	objectPascal := c.Object

	nm := &NamespaceMap{Catalogue: c, ByTarget: make(map[Target]Projection, len(AllTargets))}

	hll := Projection{
		Target:       TargetHLL,
		Path:         fmt.Sprintf("Root.%s.%s", c.Vertical, c.Field),
		ModuleSymbol: objectPascal,
		FileName:     objectSnake + ".py",
	}
	hll.FilePath = path.Join("root", vertical, field, hll.FileName)

	sys := Projection{
		Target:       TargetSYS,
		Path:         fmt.Sprintf("root::%s::%s", vertical, field),
		ModuleSymbol: objectPascal,
		FileName:     objectSnake + ".rs",
	}
	sys.FilePath = path.Join("root", vertical, field, sys.FileName)

	lll := Projection{
		Target:       TargetLLL,
		Path:         fmt.Sprintf("root/%s/%s/", vertical, field),
		ModuleSymbol: objectSnake,
		FileName:     objectSnake + ".h",
	}
	lll.FilePath = path.Join("root", vertical, field, lll.FileName)

	js := Projection{
		Target:       TargetJS,
		Path:         fmt.Sprintf("@root/%s/%s", vertical, field),
		ModuleSymbol: objectPascal,
		FileName:     objectPascal + ".js",
	}
	js.FilePath = path.Join("root", vertical, field, js.FileName)

	hdl := Projection{
		Target:       TargetHDL,
		Path:         fmt.Sprintf("root_%s_%s_%s", vertical, field, objectSnake),
		ModuleSymbol: fmt.Sprintf("root_%s_%s_%s", vertical, field, objectSnake),
		FileName:     fmt.Sprintf("root_%s_%s_%s.v", vertical, field, objectSnake),
	}
	hdl.FilePath = path.Join("root", vertical, field, hdl.FileName)

	nm.ByTarget[TargetHLL] = hll
	nm.ByTarget[TargetSYS] = sys
	nm.ByTarget[TargetLLL] = lll
	nm.ByTarget[TargetJS] = js
	nm.ByTarget[TargetHDL] = hdl

	if err := checkCollisions(nm); err != nil {
		return nm, err
	}

	return nm, nil
}

// checkCollisions validates every projected ModuleSymbol against its
// target's reserved-word list; file names are not checked.
func checkCollisions(nm *NamespaceMap) error {
	for _, target := range AllTargets {
		p := nm.ByTarget[target]
		if IsReserved(target, p.ModuleSymbol) {
			return &CollisionError{Target: target, Token: p.ModuleSymbol}
		}
	}
	return nil
}

// Get returns the projection for a single target.
func (nm *NamespaceMap) Get(t Target) Projection {
	return nm.ByTarget[t]
}
