// Package rpgid builds canonical node IDs and advisory SCIP symbol strings.
// IDs are pure string construction — no store or facade dependency — so
// any component can compute an ID without importing the store.
package rpgid

import (
	"strconv"
	"strings"

	"github.com/sourcegraph/scip/bindings/go/scip"

	"rpg/internal/rpgmodel"
)

// LowLevel builds the canonical ID for an implementation entity:
// "<filePath>:<entityType>:<entityName>[:<startLine>]". startLine is
// omitted when it is zero, so that evolution-produced IDs tolerate line
// churn while initial-encoding IDs may still carry one.
func LowLevel(filePath string, entityKind rpgmodel.EntityKind, entityName string, startLine int) string {
	id := filePath + ":" + string(entityKind) + ":" + entityName
	if startLine > 0 {
		id += ":" + strconv.Itoa(startLine)
	}
	return id
}

// LowLevelPrefix builds the ID prefix "<filePath>:<entityType>:<entityName>"
// used by the Evolver's fallback node lookup, which must match both
// line-qualified and line-less IDs for the same entity.
func LowLevelPrefix(filePath string, entityKind rpgmodel.EntityKind, entityName string) string {
	return filePath + ":" + string(entityKind) + ":" + entityName
}

// HasPrefix reports whether id names the same entity as the given
// (filePath, entityKind, entityName) prefix, regardless of a trailing
// ":<startLine>" segment.
func HasPrefix(id, filePath string, entityKind rpgmodel.EntityKind, entityName string) bool {
	prefix := LowLevelPrefix(filePath, entityKind, entityName)
	if id == prefix {
		return true
	}
	return strings.HasPrefix(id, prefix+":")
}

// HighLevel builds the canonical ID for a directory-group node:
// "<directoryPath>:dir".
func HighLevel(directoryPath string) string {
	return directoryPath + ":dir"
}

// BuildScipSymbol renders an advisory SCIP-scheme symbol string for a
// low-level entity, using the sourcegraph/scip symbol formatter. The
// result is never consulted for identity or equality — it exists purely
// for interop with SCIP-aware tooling.
func BuildScipSymbol(manager, pkg, version string, entityKind rpgmodel.EntityKind, qualifiedName string) string {
	descriptors := make([]*scip.Descriptor, 0, len(strings.Split(qualifiedName, ".")))
	parts := strings.Split(qualifiedName, ".")
	for i, part := range parts {
		suffix := scip.Descriptor_Term
		if entityKind == rpgmodel.EntityFunction || entityKind == rpgmodel.EntityMethod {
			if i == len(parts)-1 {
				suffix = scip.Descriptor_Method
			} else {
				suffix = scip.Descriptor_Namespace
			}
		} else if entityKind == rpgmodel.EntityClass {
			suffix = scip.Descriptor_Type
		}
		descriptors = append(descriptors, &scip.Descriptor{
			Name:   part,
			Suffix: suffix,
		})
	}

	sym := &scip.Symbol{
		Scheme: "rpg",
		Package: &scip.Package{
			Manager: manager,
			Name:    pkg,
			Version: version,
		},
		Descriptors: descriptors,
	}
	return scip.VerboseSymbolFormatter.FormatSymbol(sym)
}
