package modelica

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jkCXf9X4/ssp-airplane/internal/sysml"
)

func interfaceArchitecture(t *testing.T) *sysml.Architecture {
	t.Helper()

	nav := sysml.NewAttributeSet()
	nav.Add(&sysml.Attribute{Name: "latitude_deg", Type: "Real"})
	nav.Add(&sysml.Attribute{Name: "valid", Type: "bool"})

	return &sysml.Architecture{
		Package: "Aircraft",
		PortDefinitions: map[string]*sysml.PortDefinition{
			"NavData": {Name: "NavData", Attributes: nav},
			"Empty":   {Name: "Empty", Attributes: sysml.NewAttributeSet()},
		},
	}
}

func TestGenerateInterfaces(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	arch := interfaceArchitecture(t)

	// --- Act ---
	content, err := GenerateInterfaces(arch, "")

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, `within Aircraft;
package GeneratedInterfaces
  record Empty
  end Empty;
  record NavData
    Real latitude_deg;
    Boolean valid;
  end NavData;

end GeneratedInterfaces;
`, content)
}

func TestGenerateInterfaces_PackageOverride(t *testing.T) {
	t.Parallel()

	arch := interfaceArchitecture(t)

	content, err := GenerateInterfaces(arch, "FighterJet")

	require.NoError(t, err)
	require.Contains(t, content, "within FighterJet;")
}

func TestGenerateInterfaces_NoDefinitions(t *testing.T) {
	t.Parallel()

	arch := &sysml.Architecture{Package: "Aircraft"}

	_, err := GenerateInterfaces(arch, "")

	require.Error(t, err)
	require.Contains(t, err.Error(), "no port definitions found")
}

func TestWriteInterfaces(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	arch := interfaceArchitecture(t)
	path := filepath.Join(t.TempDir(), "generated", "GeneratedInterfaces.mo")

	// --- Act ---
	require.NoError(t, WriteInterfaces(arch, "", path))

	// --- Assert ---
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "record NavData")
}
