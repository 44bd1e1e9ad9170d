// Package remote issues reads and writes against the hosted backend: the
// vehiculo / vehiculo_imagen tables and the photo bucket. Every operation
// is scoped by the caller's device identifier.
package remote

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/admotors/inventory/internal/common/logger"
	"github.com/admotors/inventory/internal/common/middleware"
	"github.com/admotors/inventory/internal/device"
	"github.com/admotors/inventory/internal/imagen"
	"github.com/admotors/inventory/internal/storage"
	"github.com/admotors/inventory/internal/vehiculo"
)

// Gateway is the remote data path. Validation of forms is the caller's
// job; the gateway only coerces string fields to their column types.
type Gateway struct {
	db      *gorm.DB
	objects storage.ObjectStore
	device  *device.Manager
	log     logger.Logger
	breaker *middleware.CircuitBreaker
}

// NewGateway wires the gateway to the backend database, the photo bucket
// and the device identity.
func NewGateway(db *gorm.DB, objects storage.ObjectStore, dev *device.Manager, log logger.Logger) *Gateway {
	return &Gateway{
		db:      db,
		objects: objects,
		device:  dev,
		log:     log,
		breaker: middleware.NewCircuitBreaker("object-store", 5, 30*time.Second),
	}
}

// List fetches all rows owned by this device, newest first. Remote
// failures are logged and read as an empty inventory.
func (g *Gateway) List(ctx context.Context) []vehiculo.Vehiculo {
	span, ctx := opentracing.StartSpanFromContext(ctx, "remote.List")
	defer span.Finish()

	deviceID := g.device.DeviceID()

	var vehiculos []vehiculo.Vehiculo
	err := g.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("fecha_creacion desc").
		Find(&vehiculos).Error
	if err != nil {
		g.logf("failed to list vehiculos for device %s: %v", deviceID, err)
		return []vehiculo.Vehiculo{}
	}
	return vehiculos
}

// GetByID fetches one row scoped by device + id. Not found is a normal
// (nil, nil); any other remote error propagates.
func (g *Gateway) GetByID(ctx context.Context, id string) (*vehiculo.Vehiculo, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "remote.GetByID")
	defer span.Finish()

	var v vehiculo.Vehiculo
	err := g.db.WithContext(ctx).
		Where("id_vehiculo = ? AND device_id = ?", id, g.device.DeviceID()).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Imagenes fetches the vehicle's image rows resolved to public URLs.
// Remote failures are logged and read as no images.
func (g *Gateway) Imagenes(ctx context.Context, vehiculoID string) []string {
	span, ctx := opentracing.StartSpanFromContext(ctx, "remote.Imagenes")
	defer span.Finish()

	var rows []vehiculo.VehiculoImagen
	err := g.db.WithContext(ctx).
		Where("id_vehiculo = ?", vehiculoID).
		Find(&rows).Error
	if err != nil {
		g.logf("failed to list imagenes for vehiculo %s: %v", vehiculoID, err)
		return []string{}
	}

	urls := make([]string, 0, len(rows))
	for _, row := range rows {
		urls = append(urls, g.objects.PublicURL(row.Imagen))
	}
	return urls
}

// Create inserts a new device-stamped row and then uploads the form's
// local images sequentially. The insert failing propagates; an image
// failing is logged and skipped.
func (g *Gateway) Create(ctx context.Context, form vehiculo.FormData) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "remote.Create")
	defer span.Finish()

	v, err := g.fromForm(form)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	v.ID = uuid.NewString()
	v.DeviceID = g.device.DeviceID()
	v.FechaCreacion = now
	v.FechaActualizacion = now

	if err := g.db.WithContext(ctx).Create(&v).Error; err != nil {
		return "", fmt.Errorf("failed to create vehiculo: %w", err)
	}

	g.uploadImages(ctx, v.DeviceID, v.ID, form.Imagenes)

	return v.ID, nil
}

// Update coerces the form and rewrites the row scoped by device + id,
// touching only the update timestamp. Newly attached local images are
// uploaded afterwards.
func (g *Gateway) Update(ctx context.Context, id string, form vehiculo.FormData) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "remote.Update")
	defer span.Finish()

	v, err := g.fromForm(form)
	if err != nil {
		return err
	}

	deviceID := g.device.DeviceID()
	updates := map[string]interface{}{
		"marca_modelo":        v.MarcaModelo,
		"descripcion":         v.Descripcion,
		"precio":              v.Precio,
		"ano_fabricacion":     v.AnoFabricacion,
		"tipo_combustible":    v.TipoCombustible,
		"kilometraje":         v.Kilometraje,
		"color":               v.Color,
		"fecha_actualizacion": time.Now().UTC().Format(time.RFC3339),
	}

	err = g.db.WithContext(ctx).
		Model(&vehiculo.Vehiculo{}).
		Where("id_vehiculo = ? AND device_id = ?", id, deviceID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update vehiculo %s: %w", id, err)
	}

	g.uploadImages(ctx, deviceID, id, form.Imagenes)

	return nil
}

// Delete removes the vehicle's photo objects (best effort) and then the
// row itself, scoped by device + id. Image rows are left to the remote
// schema's cascade behavior.
func (g *Gateway) Delete(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "remote.Delete")
	defer span.Finish()

	var rows []vehiculo.VehiculoImagen
	if err := g.db.WithContext(ctx).Where("id_vehiculo = ?", id).Find(&rows).Error; err != nil {
		g.logf("failed to look up imagenes for vehiculo %s: %v", id, err)
	}
	for _, row := range rows {
		path := row.Imagen
		err := g.breaker.Call(ctx, func() error {
			return g.objects.Delete(ctx, path)
		})
		if err != nil {
			g.logf("failed to delete object %s: %v", path, err)
		}
	}

	err := g.db.WithContext(ctx).
		Where("id_vehiculo = ? AND device_id = ?", id, g.device.DeviceID()).
		Delete(&vehiculo.Vehiculo{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete vehiculo %s: %w", id, err)
	}
	return nil
}

// uploadImages pushes each local (non-URL) image reference to the bucket
// sequentially and records an image row per success. One image failing
// does not abort the rest, nor the save that triggered it.
func (g *Gateway) uploadImages(ctx context.Context, deviceID, vehiculoID string, refs []string) {
	for i, ref := range refs {
		if imagen.IsRemoteURL(ref) {
			continue
		}

		encoded, err := imagen.URIToBase64(ref)
		if err != nil {
			g.logf("failed to read image %s: %v", ref, err)
			continue
		}
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			g.logf("failed to decode image %s: %v", ref, err)
			continue
		}

		format := imagen.DetectFormat(ref)
		path := imagen.ImageName(deviceID, vehiculoID, i, format)

		err = g.breaker.Call(ctx, func() error {
			return g.objects.Upload(ctx, path, data, contentType(format))
		})
		if err != nil {
			g.logf("failed to upload image %s: %v", path, err)
			continue
		}

		row := vehiculo.VehiculoImagen{
			ID:         uuid.NewString(),
			VehiculoID: vehiculoID,
			Imagen:     path,
			CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		}
		if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
			g.logf("failed to record image row %s: %v", path, err)
		}
	}
}

// fromForm coerces the form's string fields into column types. The form
// was validated upstream, so coercion failures are caller bugs.
func (g *Gateway) fromForm(form vehiculo.FormData) (vehiculo.Vehiculo, error) {
	precio, err := strconv.ParseFloat(form.Precio, 64)
	if err != nil {
		return vehiculo.Vehiculo{}, fmt.Errorf("invalid precio %q: %w", form.Precio, err)
	}
	ano, err := strconv.Atoi(form.AnoFabricacion)
	if err != nil {
		return vehiculo.Vehiculo{}, fmt.Errorf("invalid ano_fabricacion %q: %w", form.AnoFabricacion, err)
	}
	km, err := strconv.Atoi(form.Kilometraje)
	if err != nil {
		return vehiculo.Vehiculo{}, fmt.Errorf("invalid kilometraje %q: %w", form.Kilometraje, err)
	}

	return vehiculo.Vehiculo{
		MarcaModelo:     form.MarcaModelo,
		Descripcion:     form.Descripcion,
		Precio:          precio,
		AnoFabricacion:  ano,
		TipoCombustible: form.TipoCombustible,
		Kilometraje:     km,
		Color:           form.Color,
	}, nil
}

func contentType(format string) string {
	if format == "png" {
		return "image/png"
	}
	return "image/jpeg"
}

func (g *Gateway) logf(format string, args ...interface{}) {
	if g.log != nil {
		g.log.Errorf(format, args...)
	}
}
