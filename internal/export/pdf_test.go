package export

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(t *testing.T, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for x := 0; x < 64; x++ {
		for y := 0; y < 32; y++ {
			img.Set(x, y, color.RGBA{0, 255, 133, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, encode(&buf, img))
	return buf.Bytes()
}

func pngBytes(t *testing.T) []byte {
	return testImage(t, func(b *bytes.Buffer, img image.Image) error { return png.Encode(b, img) })
}

func TestFilename(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "StudyNote_V4_Engine_1700000000123.pdf", Filename("V4_Engine", at))
	assert.Equal(t, "StudyNote_Model_1700000000123.pdf", Filename("", at))
	assert.Equal(t, "StudyNote_a_b_1700000000123.pdf", Filename("a/b", at))
}

func TestImageType(t *testing.T) {
	typ, err := ImageType(pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, "PNG", typ)

	jpg := testImage(t, func(b *bytes.Buffer, img image.Image) error { return jpeg.Encode(b, img, nil) })
	typ, err = ImageType(jpg)
	require.NoError(t, err)
	assert.Equal(t, "JPG", typ)

	_, err = ImageType([]byte("GIF89a"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestRender(t *testing.T) {
	r := NewRenderer("")
	tests := []struct {
		name string
		note Note
	}{
		{"empty note", Note{AssemblyName: "Drone"}},
		{"text only", Note{AssemblyName: "Drone", Text: "Rotor spins clockwise.\n\nCheck the nut torque."}},
		{"with snapshot", Note{AssemblyName: "RobotArm", Text: "joint 2", Snapshot: pngBytes(t)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.RenderBytes(tt.note)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
		})
	}
}

func TestRenderRejectsBadSnapshot(t *testing.T) {
	_, err := NewRenderer("").RenderBytes(Note{AssemblyName: "Drone", Snapshot: []byte("not an image")})
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestRenderRejectsCorruptSnapshot(t *testing.T) {
	corrupt := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0xde, 0xad}, 64)...)
	kind, err := ImageType(corrupt)
	require.NoError(t, err)
	require.Equal(t, "PNG", kind)

	_, err = NewRenderer("").RenderBytes(Note{AssemblyName: "Drone", Snapshot: corrupt})
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestRenderMissingFont(t *testing.T) {
	_, err := NewRenderer(filepath.Join(t.TempDir(), "missing.ttf")).RenderBytes(Note{AssemblyName: "Drone"})
	assert.Error(t, err)
}

func TestArchive(t *testing.T) {
	a := NewArchive(t.TempDir())
	assert.Empty(t, a.List("user:1"))

	path, err := a.Save("user:1", "StudyNote_Drone_2.pdf", []byte("%PDF-1.3"))
	require.NoError(t, err)
	_, err = a.Save("user:1", "../StudyNote_Drone_1.pdf", []byte("%PDF-1.3"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(data))
	assert.Equal(t, []string{"StudyNote_Drone_1.pdf", "StudyNote_Drone_2.pdf"}, a.List("user:1"))
	assert.Empty(t, a.List("user:2"))
	assert.Equal(t, "user_1", filepath.Base(a.OwnerDir("user:1")))
}
