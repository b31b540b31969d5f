package render

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"glscene/internal/logger"
	"glscene/pkg/asset"
	"glscene/pkg/gpu"
	"glscene/pkg/ident"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *gpu.MemoryDevice) {
	t.Helper()
	dev := gpu.NewMemoryDevice()
	c, err := NewCache(dev, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, dev
}

func TestCacheDefaults(t *testing.T) {
	c, _ := newTestCache(t)

	lit, ok := c.Material(ident.Invalid)
	require.True(t, ok)
	assert.Equal(t, asset.BlinnPhong, lit.Type())
	assert.Equal(t, c.DefaultMaterial(asset.BlinnPhong), lit.ID())

	unlit, ok := c.Material(c.DefaultMaterial(asset.UnlitColor))
	require.True(t, ok)
	assert.Equal(t, asset.UnlitColor, unlit.Type())

	_, err := c.NewMaterial(asset.MaterialType(42), "bogus")
	assert.ErrorIs(t, err, ErrUnknownMaterial)

	_, err = NewCache(nil, nil)
	assert.Error(t, err)
}

func TestMaterialForFallsBack(t *testing.T) {
	c, _ := newTestCache(t)
	m := c.MaterialFor(asset.MeshView{MaterialID: ident.Next(), Fallback: asset.UnlitColor})
	assert.Equal(t, c.DefaultMaterial(asset.UnlitColor), m.ID())

	id := c.CreateMaterial(asset.BlinnPhong, "red", mgl32.Vec4{1, 0, 0, 1})
	m = c.MaterialFor(asset.MeshView{MaterialID: id})
	assert.Equal(t, id, m.ID())
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, m.(*BlinnPhongMaterial).BaseColor())
}

func TestTechniqueBuiltOnce(t *testing.T) {
	c, dev := newTestCache(t)
	t1, err := c.Technique(TechniqueBlinnPhong)
	require.NoError(t, err)
	t2, err := c.Technique(TechniqueBlinnPhong)
	require.NoError(t, err)
	assert.Same(t, t1, t2)
	assert.Len(t, dev.Pipelines(), 1)

	_, err = c.Technique(TechniqueKind(99))
	assert.Error(t, err)
}

func TestBlinnPhongBindUploadsParameters(t *testing.T) {
	c, dev := newTestCache(t)
	id := c.CreateMaterial(asset.BlinnPhong, "green", mgl32.Vec4{0, 1, 0, 1})
	m, _ := c.Material(id)
	bp := m.(*BlinnPhongMaterial)

	require.NoError(t, bp.Bind(true))
	buf, ok := dev.Uniform(BindingMaterial)
	require.True(t, ok)
	data := buf.Bytes()
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 1}, gpu.ReadVec4(data, 0))
	assert.Equal(t, float32(200), gpu.ReadFloat(data, 16))
	require.NotNil(t, dev.BoundPipeline())
	assert.Equal(t, "blinnphong", dev.BoundPipeline().Desc.Name)

	bp.SetShininess(8)
	require.NoError(t, bp.Bind(false))
	assert.Equal(t, float32(8), gpu.ReadFloat(buf.Bytes(), 16))

	// Prepare is idempotent
	require.NoError(t, bp.Prepare())
	buffers, _, _ := dev.Live()
	assert.Equal(t, 1, buffers)
}

func TestMaterialPrepareFailurePropagates(t *testing.T) {
	c, dev := newTestCache(t)
	m, _ := c.Material(ident.Invalid)
	dev.Fail = assert.AnError
	assert.ErrorIs(t, m.Prepare(), assert.AnError)
}

func TestSetShaderSourceRebuildsOnlyOnChange(t *testing.T) {
	c, dev := newTestCache(t)
	_, err := c.Technique(TechniqueUnlitColor)
	require.NoError(t, err)

	src, _ := c.ShaderSource(ShaderUnlitFrag)
	changed, err := c.SetShaderSource(ShaderUnlitFrag, src)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, dev.Pipelines(), 1)

	changed, err = c.SetShaderSource(ShaderUnlitFrag, src+"\n// edited\n")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, dev.Pipelines(), 2)
	_, live, _ := dev.Live()
	assert.Equal(t, 1, live)

	// an unused technique is not built by a source change
	changed, err = c.SetShaderSource(ShaderGridFrag, "void main(){}")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, dev.Pipelines(), 2)
}

func TestSetShaderSourceKeepsPipelineOnFailure(t *testing.T) {
	c, _ := newTestCache(t)
	before, err := c.Technique(TechniqueUnlitColor)
	require.NoError(t, err)

	changed, err := c.SetShaderSource(ShaderUnlitVert, "")
	assert.True(t, changed)
	assert.Error(t, err)

	after, err := c.Technique(TechniqueUnlitColor)
	require.NoError(t, err)
	assert.Same(t, before, after)
}

func TestMeshUploadedOnce(t *testing.T) {
	c, dev := newTestCache(t)
	src := asset.CubeMesh()
	m1, err := c.Mesh(src)
	require.NoError(t, err)
	m2, err := c.Mesh(src)
	require.NoError(t, err)
	assert.Same(t, m1, m2)

	m1.Draw()
	assert.Equal(t, 1, dev.Draws())

	c.Close()
	_, _, geoms := dev.Live()
	assert.Equal(t, 0, geoms)
}

func TestLoadShaderSources(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ShaderUnlitFrag), []byte("custom"), 0o644))

	got, err := LoadShaderSources(context.Background(), dir, ShaderNames())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{ShaderUnlitFrag: "custom"}, got)

	c, _ := newTestCache(t)
	changed, err := c.SetShaderSources(got)
	require.NoError(t, err)
	assert.Equal(t, []string{ShaderUnlitFrag}, changed)
}

func TestWatcherFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, []string{ShaderGridFrag}, logger.Nop())
	require.NoError(t, err)
	defer w.Close()

	var mu sync.Mutex
	var got []ShaderChange
	w.Changed.Connect(func(c ShaderChange) {
		mu.Lock()
		got = append(got, c)
		mu.Unlock()
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ShaderGridFrag), []byte("new grid"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, c := range got {
			if c.Name == ShaderGridFrag && c.Code == "new grid" {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)

	mu.Lock()
	for _, c := range got {
		assert.Equal(t, ShaderGridFrag, c.Name)
	}
	mu.Unlock()

	require.NoError(t, w.Close())
	assert.True(t, w.Changed.Empty())
}
