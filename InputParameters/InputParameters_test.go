package InputParameters

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/notargets/femview/neutral"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportParameters(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		ip := NewImportParameters()
		assert.Equal(t, "4.41", ip.ExpectedVersion)
		assert.Equal(t, neutral.DefaultLayout(), ip.Layout())
		assert.NoError(t, ip.Validate())
	})

	t.Run("Parse", func(t *testing.T) {
		var input = []byte(`
Title: "Motor run"
ElementStride: 8
OutputVectorBlock: 1051
CellToPoint: true
FieldAliases:
  B: MagneticFlux
  F: Force
`)
		ip := &ImportParameters{}
		require.NoError(t, ip.Parse(input))
		assert.Equal(t, "Motor run", ip.Title)
		assert.Equal(t, 8, ip.ElementStride)
		assert.Equal(t, 7, ip.PropertyStride)
		assert.Equal(t, 1051, ip.Layout().OutputVectorBlock)
		assert.Equal(t, 450, ip.Layout().OutputSetBlock)
		assert.True(t, ip.CellToPoint)
		assert.False(t, ip.AllowErrors)
		assert.Equal(t, map[string]string{"B": "MagneticFlux", "F": "Force"}, ip.FieldAliases)

		var buf bytes.Buffer
		ip.Fprint(&buf)
		assert.Contains(t, buf.String(), "FieldAliases[B] = MagneticFlux")
		assert.Contains(t, buf.String(), "[7, 8]")
	})

	t.Run("Invalid", func(t *testing.T) {
		testCases := map[string]string{
			"ShortElement":   "ElementStride: 2",
			"ShortProperty":  "PropertyStride: 1",
			"NodeTokens":     "NodeMinTokens: 9",
			"SameBlocks":     "OutputSetBlock: 451",
			"ShortHeader":    "VectorHeaderLines: 3",
			"NotYAML":        "ElementStride: [",
			"WrongFieldType": "ElementStride: seven",
		}
		for name, input := range testCases {
			t.Run(name, func(t *testing.T) {
				assert.Error(t, (&ImportParameters{}).Parse([]byte(input)))
			})
		}
	})

	t.Run("ReadFile", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "import.yaml")
		require.NoError(t, os.WriteFile(filename, []byte("ProbeDB: \"-\"\nAllowErrors: true\n"), 0644))
		ip, err := ReadImportParameters(filename)
		require.NoError(t, err)
		assert.Equal(t, ProbeDisabled, ip.ProbeDB)
		assert.True(t, ip.AllowErrors)

		_, err = ReadImportParameters(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}
