// Package imagen wraps photo acquisition: the platform picker/camera sit
// behind Provider (an external collaborator), while format sniffing,
// base64 conversion and storage-path building live here.
package imagen

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/admotors/inventory/internal/common/logger"
)

// Provider abstracts the platform image source.
type Provider interface {
	// RequestPermission asks for gallery or camera access.
	RequestPermission(camera bool) (bool, error)
	// Launch opens the picker or camera and returns the chosen local file
	// reference. canceled reports the user backing out.
	Launch(camera bool) (uri string, canceled bool, err error)
}

// Acquirer drives a Provider with the app's permission/cancel handling.
type Acquirer struct {
	provider Provider
	log      logger.Logger
}

// NewAcquirer binds the acquisition flow to a Provider.
func NewAcquirer(provider Provider, log logger.Logger) *Acquirer {
	return &Acquirer{provider: provider, log: log}
}

// PickFromGallery returns a local file reference, or "" when permission
// is denied, the user cancels, or the picker fails. Denial and
// cancellation are normal outcomes, not errors.
func (a *Acquirer) PickFromGallery() string {
	return a.acquire(false)
}

// TakePicture is PickFromGallery for the camera.
func (a *Acquirer) TakePicture() string {
	return a.acquire(true)
}

func (a *Acquirer) acquire(camera bool) string {
	granted, err := a.provider.RequestPermission(camera)
	if err != nil {
		a.logf("permission request failed: %v", err)
		return ""
	}
	if !granted {
		return ""
	}

	uri, canceled, err := a.provider.Launch(camera)
	if err != nil {
		a.logf("image acquisition failed: %v", err)
		return ""
	}
	if canceled {
		return ""
	}
	return uri
}

func (a *Acquirer) logf(format string, args ...interface{}) {
	if a.log != nil {
		a.log.Errorf(format, args...)
	}
}

// URIToBase64 reads the local file and re-encodes it to base64.
func URIToBase64(uri string) (string, error) {
	data, err := os.ReadFile(uri)
	if err != nil {
		return "", fmt.Errorf("failed to read image %s: %w", uri, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DetectFormat sniffs the format from the lowercase path suffix,
// defaulting to jpg.
func DetectFormat(uri string) string {
	lower := strings.ToLower(uri)
	switch {
	case strings.HasSuffix(lower, ".png"):
		return "png"
	case strings.HasSuffix(lower, ".jpeg"):
		return "jpeg"
	default:
		return "jpg"
	}
}

// ImageName builds the deterministic storage path
// {device}/{vehicleId}-{timestamp}-{index}.{format}.
func ImageName(deviceID, vehiculoID string, index int, format string) string {
	return fmt.Sprintf("%s/%s-%d-%d.%s", deviceID, vehiculoID, time.Now().Unix(), index, format)
}

// IsRemoteURL reports whether the reference already points at the object
// store (absolute URL) rather than a local file.
func IsRemoteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
