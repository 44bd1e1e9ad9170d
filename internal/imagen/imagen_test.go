package imagen

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	granted  bool
	uri      string
	canceled bool
	err      error
}

func (f *fakeProvider) RequestPermission(camera bool) (bool, error) {
	return f.granted, nil
}

func (f *fakeProvider) Launch(camera bool) (string, bool, error) {
	return f.uri, f.canceled, f.err
}

func TestAcquirerPermissionDenied(t *testing.T) {
	a := NewAcquirer(&fakeProvider{granted: false, uri: "/tmp/x.jpg"}, nil)
	assert.Equal(t, "", a.PickFromGallery())
	assert.Equal(t, "", a.TakePicture())
}

func TestAcquirerUserCanceled(t *testing.T) {
	a := NewAcquirer(&fakeProvider{granted: true, canceled: true}, nil)
	assert.Equal(t, "", a.PickFromGallery())
}

func TestAcquirerProviderError(t *testing.T) {
	a := NewAcquirer(&fakeProvider{granted: true, err: errors.New("camera busy")}, nil)
	assert.Equal(t, "", a.TakePicture())
}

func TestAcquirerSuccess(t *testing.T) {
	a := NewAcquirer(&fakeProvider{granted: true, uri: "/tmp/photo.png"}, nil)
	assert.Equal(t, "/tmp/photo.png", a.PickFromGallery())
}

func TestURIToBase64(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.jpg")
	require.NoError(t, os.WriteFile(path, []byte("fake-jpeg-bytes"), 0o644))

	encoded, err := URIToBase64(path)
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake-jpeg-bytes"), decoded)

	_, err = URIToBase64(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, "png", DetectFormat("/a/b/photo.PNG"))
	assert.Equal(t, "jpeg", DetectFormat("photo.jpeg"))
	assert.Equal(t, "jpg", DetectFormat("photo.jpg"))
	assert.Equal(t, "jpg", DetectFormat("photo.webp"))
	assert.Equal(t, "jpg", DetectFormat("no-extension"))
}

func TestImageName(t *testing.T) {
	name := ImageName("dev1", "veh1", 0, "png")
	assert.Regexp(t, regexp.MustCompile(`^dev1/veh1-\d+-0\.png$`), name)
}

func TestIsRemoteURL(t *testing.T) {
	assert.True(t, IsRemoteURL("https://storage.googleapis.com/b/x.jpg"))
	assert.True(t, IsRemoteURL("http://cdn.local/x.jpg"))
	assert.False(t, IsRemoteURL("/var/mobile/photo.jpg"))
	assert.False(t, IsRemoteURL("file:///photo.jpg"))
}
