// Package vehiculo holds the dealership inventory domain: the vehicle
// record shared by the hosted backend and the local mirror, plus the
// offline cache over it.
package vehiculo

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Combustible is the fuel type enumeration, persisted as a string.
type Combustible string

const (
	Gasolina  Combustible = "GASOLINA"
	Diesel    Combustible = "DIESEL"
	Electrico Combustible = "ELECTRICO"
	Hibrido   Combustible = "HIBRIDO"
)

// Valid reports whether c is one of the known fuel types.
func (c Combustible) Valid() bool {
	switch c {
	case Gasolina, Diesel, Electrico, Hibrido:
		return true
	}
	return false
}

// Vehiculo is the inventory record. It doubles as the GORM model for the
// hosted `vehiculo` table and the JSON payload of the local mirror, so
// column and json names follow the remote schema.
//
// Timestamps are ISO-8601 strings, as stored by the backend.
type Vehiculo struct {
	ID                 string      `json:"id_vehiculo" gorm:"column:id_vehiculo;primaryKey;size:36"`
	DeviceID           string      `json:"device_id" gorm:"column:device_id;index;size:64;not null"`
	MarcaModelo        string      `json:"marca_modelo" gorm:"column:marca_modelo;size:128;not null"`
	Descripcion        string      `json:"descripcion,omitempty" gorm:"column:descripcion;size:512"`
	Precio             float64     `json:"precio" gorm:"column:precio;not null"`
	AnoFabricacion     int         `json:"ano_fabricacion" gorm:"column:ano_fabricacion;not null"`
	TipoCombustible    Combustible `json:"tipo_combustible" gorm:"column:tipo_combustible;type:varchar(16);not null"`
	Kilometraje        int         `json:"kilometraje" gorm:"column:kilometraje;not null"`
	Color              string      `json:"color,omitempty" gorm:"column:color;size:32"`
	FechaCreacion      string      `json:"fecha_creacion" gorm:"column:fecha_creacion;size:40"`
	FechaActualizacion string      `json:"fecha_actualizacion,omitempty" gorm:"column:fecha_actualizacion;size:40"`
}

func (Vehiculo) TableName() string {
	return "vehiculo"
}

// VehiculoImagen links a stored photo path to its vehicle. Rows are not
// deleted explicitly when the vehicle goes away; the remote schema is
// expected to cascade (or tolerate orphans).
type VehiculoImagen struct {
	ID         string `json:"id_imagen" gorm:"column:id_imagen;primaryKey;size:36"`
	VehiculoID string `json:"id_vehiculo" gorm:"column:id_vehiculo;index;size:36;not null"`
	Imagen     string `json:"imagen" gorm:"column:imagen;size:255;not null"`
	CreatedAt  string `json:"created_at" gorm:"column:created_at;size:40"`
}

func (VehiculoImagen) TableName() string {
	return "vehiculo_imagen"
}

// FormData is the create/update input as the UI delivers it: numeric
// fields arrive as strings and are validated here, before the gateway
// coerces them. The gateway itself does not re-validate.
type FormData struct {
	MarcaModelo     string      `json:"marca_modelo" validate:"required"`
	Descripcion     string      `json:"descripcion"`
	Precio          string      `json:"precio" validate:"required"`
	AnoFabricacion  string      `json:"ano_fabricacion" validate:"required"`
	TipoCombustible Combustible `json:"tipo_combustible" validate:"required,oneof=GASOLINA DIESEL ELECTRICO HIBRIDO"`
	Kilometraje     string      `json:"kilometraje" validate:"required"`
	Color           string      `json:"color"`
	Imagenes        []string    `json:"imagenes"`
}

var validate = validator.New()

// Validate enforces the form contract: non-empty brand/model, precio > 0,
// year >= 1900, kilometraje >= 0, known fuel type.
func (f *FormData) Validate() error {
	if err := validate.Struct(f); err != nil {
		return err
	}

	precio, err := strconv.ParseFloat(f.Precio, 64)
	if err != nil || precio <= 0 {
		return fmt.Errorf("precio must be a number greater than 0")
	}
	ano, err := strconv.Atoi(f.AnoFabricacion)
	if err != nil || ano < 1900 {
		return fmt.Errorf("ano_fabricacion must be a year >= 1900")
	}
	km, err := strconv.Atoi(f.Kilometraje)
	if err != nil || km < 0 {
		return fmt.Errorf("kilometraje must be a non-negative integer")
	}
	return nil
}

// Criteria narrows a vehicle list. Each field is optional; filters apply
// in the fixed order marca, precioMin, precioMax, combustible.
type Criteria struct {
	Marca       string
	PrecioMin   *float64
	PrecioMax   *float64
	Combustible Combustible
}

// SortKey selects a cache sort order.
type SortKey string

const (
	SortPrecio SortKey = "precio" // ascending price
	SortFecha  SortKey = "fecha"  // newest first
	SortMarca  SortKey = "marca"  // locale-aware brand/model ascending
)

// Estadisticas summarizes the cached collection.
type Estadisticas struct {
	Total          int            `json:"total"`
	PrecioPromedio float64        `json:"precioPromedio"`
	PrecioMin      float64        `json:"precioMin"`
	PrecioMax      float64        `json:"precioMax"`
	PorMarca       map[string]int `json:"porMarca"`
}
