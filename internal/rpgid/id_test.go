package rpgid

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rpg/internal/rpgmodel"
)

func TestLowLevel_WithStartLine(t *testing.T) {
	id := LowLevel("src/x.ts", rpgmodel.EntityFunction, "foo", 12)
	require.Equal(t, "src/x.ts:function:foo:12", id)
}

func TestLowLevel_WithoutStartLine(t *testing.T) {
	id := LowLevel("src/x.ts", rpgmodel.EntityFunction, "foo", 0)
	require.Equal(t, "src/x.ts:function:foo", id)
}

func TestHighLevel(t *testing.T) {
	require.Equal(t, "src/dirA:dir", HighLevel("src/dirA"))
}

func TestHasPrefix_ToleratesLineSuffix(t *testing.T) {
	id := LowLevel("src/x.ts", rpgmodel.EntityFunction, "foo", 12)
	require.True(t, HasPrefix(id, "src/x.ts", rpgmodel.EntityFunction, "foo"))

	idNoLine := LowLevel("src/x.ts", rpgmodel.EntityFunction, "foo", 0)
	require.True(t, HasPrefix(idNoLine, "src/x.ts", rpgmodel.EntityFunction, "foo"))

	require.False(t, HasPrefix(id, "src/x.ts", rpgmodel.EntityFunction, "bar"))
}

func TestBuildScipSymbol_NonEmpty(t *testing.T) {
	sym := BuildScipSymbol("rpg-repo", "pkg", "", rpgmodel.EntityFunction, "Engine.Run")
	require.NotEmpty(t, sym)
	require.Contains(t, sym, "Engine")
	require.Contains(t, sym, "Run")
}
