package diff

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiff = `diff --git a/src/Calc/Calculator.cs b/src/Calc/Calculator.cs
index 83db48f..bf269f4 100644
--- a/src/Calc/Calculator.cs
+++ b/src/Calc/Calculator.cs
@@ -10,2 +10,3 @@ namespace Calc
-        public int Add(int a, int b) => a + b;
+        public int Add(int a, int b) => Checked(a + b);
+        private int Checked(int v) => v;
@@ -30 +31 @@ namespace Calc
-        public int Mul(int a, int b) => a * b;
+        public int Mul(int a, int b) => checked(a * b);
diff --git a/src/Calc/New.cs b/src/Calc/New.cs
new file mode 100644
--- /dev/null
+++ b/src/Calc/New.cs
@@ -0,0 +1,4 @@
+namespace Calc
+{
+    public class New {}
+}
`

func TestUnifiedDiffProvider_GetChangedHunks(t *testing.T) {
	p := &UnifiedDiffProvider{Text: sampleDiff}
	hunks, err := p.GetChangedHunks()
	require.NoError(t, err)
	require.Len(t, hunks, 3)

	assert.Equal(t, Hunk{File: "src/Calc/Calculator.cs", ChangeKind: "Modified", StartLine: 10, EndLine: 12}, hunks[0])
	assert.Equal(t, Hunk{File: "src/Calc/Calculator.cs", ChangeKind: "Modified", StartLine: 31, EndLine: 31}, hunks[1])
	assert.Equal(t, Hunk{File: "src/Calc/New.cs", ChangeKind: "Added", StartLine: 1, EndLine: 4}, hunks[2])
}

func TestUnifiedDiffProvider_GetChangedFiles(t *testing.T) {
	p := &UnifiedDiffProvider{Text: sampleDiff}
	files, err := p.GetChangedFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"src/Calc/Calculator.cs", "src/Calc/New.cs"}, files)
}

func TestUnifiedDiffProvider_Empty(t *testing.T) {
	p := &UnifiedDiffProvider{}
	hunks, err := p.GetChangedHunks()
	require.NoError(t, err)
	assert.Empty(t, hunks)
}

func TestNewUnifiedDiffProviderFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "change.patch")
	require.NoError(t, os.WriteFile(path, []byte(sampleDiff), 0o644))

	p, err := NewUnifiedDiffProviderFromFile(path)
	require.NoError(t, err)
	hunks, err := p.GetChangedHunks()
	require.NoError(t, err)
	assert.Len(t, hunks, 3)
}

func TestNewUnifiedDiffProviderFromFile_Missing(t *testing.T) {
	_, err := NewUnifiedDiffProviderFromFile("/nonexistent.patch")
	require.Error(t, err)
}
