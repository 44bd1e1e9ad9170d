package vehiculo

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/admotors/inventory/internal/common/logger"
	"github.com/admotors/inventory/internal/localstore"
)

// Cache is the offline mirror of the vehicle collection: one local-store
// key holding the full list, rewritten wholesale on every mutation.
// Concurrent writers race and the last write wins; there is no detection
// and no retry.
type Cache struct {
	store *localstore.Store
	log   logger.Logger
	now   func() time.Time
}

// NewCache builds the mirror over an opened store.
func NewCache(store *localstore.Store, log logger.Logger) *Cache {
	return &Cache{store: store, log: log, now: time.Now}
}

// List returns the cached collection, empty when nothing is cached or
// the stored blob does not decode.
func (c *Cache) List() []Vehiculo {
	var vehiculos []Vehiculo
	ok, err := c.store.GetJSON(localstore.VehiculosKey, &vehiculos)
	if err != nil || !ok || vehiculos == nil {
		return []Vehiculo{}
	}
	return vehiculos
}

// GetByID scans the cached list for the given identifier.
func (c *Cache) GetByID(id string) *Vehiculo {
	for _, v := range c.List() {
		if v.ID == id {
			found := v
			return &found
		}
	}
	return nil
}

// Save upserts a vehicle: a record without an id gets a fresh one; a
// matching id replaces in place, anything else appends. The full list is
// rewritten, and the {data, timestamp} envelope updated alongside.
func (c *Cache) Save(v Vehiculo) (Vehiculo, error) {
	vehiculos := c.List()

	if v.ID == "" {
		v.ID = uuid.NewString()
	}

	replaced := false
	for i := range vehiculos {
		if vehiculos[i].ID == v.ID {
			vehiculos[i] = v
			replaced = true
			break
		}
	}
	if !replaced {
		vehiculos = append(vehiculos, v)
	}

	if err := c.writeList(vehiculos); err != nil {
		return Vehiculo{}, err
	}
	return v, nil
}

// Create is an alias for Save.
func (c *Cache) Create(v Vehiculo) (Vehiculo, error) {
	return c.Save(v)
}

// Update forces the identifier onto v and saves.
func (c *Cache) Update(id string, v Vehiculo) (Vehiculo, error) {
	v.ID = id
	return c.Save(v)
}

// Delete filters the identifier out of the list. Deleting an absent id
// is not an error; false is returned only when the rewrite fails.
func (c *Cache) Delete(id string) bool {
	vehiculos := c.List()

	filtered := vehiculos[:0]
	for _, v := range vehiculos {
		if v.ID != id {
			filtered = append(filtered, v)
		}
	}

	if err := c.writeList(filtered); err != nil {
		if c.log != nil {
			c.log.Errorf("failed to delete vehiculo %s from cache: %v", id, err)
		}
		return false
	}
	return true
}

// Filter narrows the cached list by the provided criteria, in the fixed
// order marca, precioMin, precioMax, combustible.
func (c *Cache) Filter(criteria Criteria) []Vehiculo {
	vehiculos := c.List()

	if criteria.Marca != "" {
		needle := strings.ToLower(criteria.Marca)
		vehiculos = keep(vehiculos, func(v Vehiculo) bool {
			return strings.Contains(strings.ToLower(v.MarcaModelo), needle)
		})
	}
	if criteria.PrecioMin != nil {
		vehiculos = keep(vehiculos, func(v Vehiculo) bool {
			return v.Precio >= *criteria.PrecioMin
		})
	}
	if criteria.PrecioMax != nil {
		vehiculos = keep(vehiculos, func(v Vehiculo) bool {
			return v.Precio <= *criteria.PrecioMax
		})
	}
	if criteria.Combustible != "" {
		vehiculos = keep(vehiculos, func(v Vehiculo) bool {
			return v.TipoCombustible == criteria.Combustible
		})
	}

	return vehiculos
}

// Sort returns the cached list in the requested order. Unparseable or
// missing creation dates sort as the epoch, pushing them last under
// SortFecha's newest-first order.
func (c *Cache) Sort(key SortKey) []Vehiculo {
	vehiculos := c.List()

	switch key {
	case SortPrecio:
		sort.SliceStable(vehiculos, func(i, j int) bool {
			return vehiculos[i].Precio < vehiculos[j].Precio
		})
	case SortFecha:
		sort.SliceStable(vehiculos, func(i, j int) bool {
			return parseFecha(vehiculos[i].FechaCreacion).After(parseFecha(vehiculos[j].FechaCreacion))
		})
	case SortMarca:
		cl := collate.New(language.Spanish)
		sort.SliceStable(vehiculos, func(i, j int) bool {
			return cl.CompareString(vehiculos[i].MarcaModelo, vehiculos[j].MarcaModelo) < 0
		})
	}

	return vehiculos
}

// Estadisticas computes count, mean/min/max price and the per-brand
// histogram, where the brand is the first whitespace token of
// marca_modelo. An empty collection yields all zeros.
func (c *Cache) Estadisticas() Estadisticas {
	vehiculos := c.List()

	stats := Estadisticas{PorMarca: map[string]int{}}
	if len(vehiculos) == 0 {
		return stats
	}

	stats.Total = len(vehiculos)
	stats.PrecioMin = vehiculos[0].Precio
	stats.PrecioMax = vehiculos[0].Precio

	var sum float64
	for _, v := range vehiculos {
		sum += v.Precio
		if v.Precio < stats.PrecioMin {
			stats.PrecioMin = v.Precio
		}
		if v.Precio > stats.PrecioMax {
			stats.PrecioMax = v.Precio
		}
		if fields := strings.Fields(v.MarcaModelo); len(fields) > 0 {
			stats.PorMarca[fields[0]]++
		}
	}
	stats.PrecioPromedio = sum / float64(len(vehiculos))

	return stats
}

// SyncWithServer merges the remote list into the mirror: the local list
// is the base, a remote record replaces the local one with the same id,
// and unseen remote ids are appended. Records absent from the remote
// list are never removed here (no delete propagation). The last-sync
// timestamp is recorded as the sync's sole audit trail.
func (c *Cache) SyncWithServer(remote []Vehiculo) error {
	merged := c.List()

	for _, r := range remote {
		replaced := false
		for i := range merged {
			if merged[i].ID == r.ID {
				merged[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, r)
		}
	}

	if err := c.store.SetJSON(localstore.VehiculosKey, merged); err != nil {
		return err
	}
	if err := c.store.SetLastSyncTime(c.now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	if c.log != nil {
		c.log.Infof("sync completed: %d vehiculos in cache", len(merged))
	}
	return nil
}

// ClearAll removes the vehicle list key only; other keys are untouched.
func (c *Cache) ClearAll() error {
	return c.store.RemoveItem(localstore.VehiculosKey)
}

// writeList rewrites the authoritative list key and refreshes the
// {data, timestamp} envelope alongside it. The mutation paths never read
// the envelope back; GetVehiculosCache is the read side.
func (c *Cache) writeList(vehiculos []Vehiculo) error {
	if err := c.store.SetJSON(localstore.VehiculosKey, vehiculos); err != nil {
		return err
	}
	return c.store.SetVehiculosCache(vehiculos, c.now().UTC().Format(time.RFC3339))
}

func keep(vehiculos []Vehiculo, pred func(Vehiculo) bool) []Vehiculo {
	out := make([]Vehiculo, 0, len(vehiculos))
	for _, v := range vehiculos {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out
}

func parseFecha(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
