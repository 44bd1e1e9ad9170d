package vehiculo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admotors/inventory/internal/localstore"
)

func newTestCache(t *testing.T) (*Cache, *localstore.Store) {
	t.Helper()
	store, err := localstore.Open(localstore.Config{InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewCache(store, nil), store
}

func TestListEmptyAndCorrupt(t *testing.T) {
	c, store := newTestCache(t)

	assert.Equal(t, []Vehiculo{}, c.List())

	// a corrupt blob reads as an empty collection
	require.NoError(t, store.SetItem(localstore.VehiculosKey, "{broken"))
	assert.Equal(t, []Vehiculo{}, c.List())
}

func TestSaveUpsertSemantics(t *testing.T) {
	c, _ := newTestCache(t)

	// no id: one is assigned and the record appended
	saved, err := c.Save(Vehiculo{MarcaModelo: "Toyota Corolla", Precio: 10000})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	assert.Len(t, c.List(), 1)

	// existing id: replaced in place, size unchanged
	saved.Precio = 12000
	_, err = c.Save(saved)
	require.NoError(t, err)
	require.Len(t, c.List(), 1)
	assert.Equal(t, 12000.0, c.List()[0].Precio)

	// novel id: appended
	_, err = c.Save(Vehiculo{ID: "otro", MarcaModelo: "Honda Civic", Precio: 20000})
	require.NoError(t, err)
	assert.Len(t, c.List(), 2)
}

func TestSaveRefreshesCacheEnvelope(t *testing.T) {
	c, store := newTestCache(t)

	saved, err := c.Save(Vehiculo{MarcaModelo: "Toyota Corolla", Precio: 10000})
	require.NoError(t, err)

	var cached []Vehiculo
	stamp, ok, err := store.GetVehiculosCache(&cached)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, stamp)
	require.Len(t, cached, 1)
	assert.Equal(t, saved.ID, cached[0].ID)
}

func TestUpdateForcesID(t *testing.T) {
	c, _ := newTestCache(t)

	saved, err := c.Save(Vehiculo{MarcaModelo: "Toyota Corolla", Precio: 10000})
	require.NoError(t, err)

	updated, err := c.Update(saved.ID, Vehiculo{ID: "ignored", MarcaModelo: "Toyota Corolla", Precio: 9000})
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	require.Len(t, c.List(), 1)
	assert.Equal(t, 9000.0, c.List()[0].Precio)
}

func TestDelete(t *testing.T) {
	c, _ := newTestCache(t)

	saved, err := c.Save(Vehiculo{MarcaModelo: "Toyota Corolla", Precio: 10000})
	require.NoError(t, err)
	_, err = c.Save(Vehiculo{MarcaModelo: "Honda Civic", Precio: 20000})
	require.NoError(t, err)

	assert.True(t, c.Delete(saved.ID))
	assert.Len(t, c.List(), 1)

	// deleting an absent id leaves the collection unchanged
	assert.True(t, c.Delete("no-such-id"))
	assert.Len(t, c.List(), 1)
}

func TestFilter(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.Save(Vehiculo{ID: "t", MarcaModelo: "Toyota Corolla", Precio: 10000, TipoCombustible: Gasolina})
	require.NoError(t, err)
	_, err = c.Save(Vehiculo{ID: "h", MarcaModelo: "Honda Civic", Precio: 20000, TipoCombustible: Hibrido})
	require.NoError(t, err)

	min := 15000.0
	got := c.Filter(Criteria{PrecioMin: &min})
	require.Len(t, got, 1)
	assert.Equal(t, "Honda Civic", got[0].MarcaModelo)

	got = c.Filter(Criteria{Marca: "toyota"})
	require.Len(t, got, 1)
	assert.Equal(t, "Toyota Corolla", got[0].MarcaModelo)

	max := 15000.0
	got = c.Filter(Criteria{PrecioMax: &max})
	require.Len(t, got, 1)
	assert.Equal(t, "Toyota Corolla", got[0].MarcaModelo)

	got = c.Filter(Criteria{Combustible: Hibrido})
	require.Len(t, got, 1)
	assert.Equal(t, "Honda Civic", got[0].MarcaModelo)

	// no criteria: everything
	assert.Len(t, c.Filter(Criteria{}), 2)
}

func TestSort(t *testing.T) {
	c, _ := newTestCache(t)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := []Vehiculo{
		{ID: "a", MarcaModelo: "Citroen C3", Precio: 30000, FechaCreacion: base.Format(time.RFC3339)},
		{ID: "b", MarcaModelo: "Audi A3", Precio: 10000, FechaCreacion: base.Add(48 * time.Hour).Format(time.RFC3339)},
		{ID: "c", MarcaModelo: "BMW Serie 1", Precio: 20000, FechaCreacion: "not-a-date"},
	}
	for _, v := range rows {
		_, err := c.Save(v)
		require.NoError(t, err)
	}

	byPrecio := c.Sort(SortPrecio)
	assert.Equal(t, []float64{10000, 20000, 30000}, []float64{byPrecio[0].Precio, byPrecio[1].Precio, byPrecio[2].Precio})

	// newest first; the unparseable date sorts as the epoch, so last
	byFecha := c.Sort(SortFecha)
	assert.Equal(t, "b", byFecha[0].ID)
	assert.Equal(t, "a", byFecha[1].ID)
	assert.Equal(t, "c", byFecha[2].ID)

	byMarca := c.Sort(SortMarca)
	assert.Equal(t, "Audi A3", byMarca[0].MarcaModelo)
	assert.Equal(t, "BMW Serie 1", byMarca[1].MarcaModelo)
	assert.Equal(t, "Citroen C3", byMarca[2].MarcaModelo)
}

func TestEstadisticas(t *testing.T) {
	c, _ := newTestCache(t)

	empty := c.Estadisticas()
	assert.Equal(t, 0, empty.Total)
	assert.Equal(t, 0.0, empty.PrecioPromedio)
	assert.Equal(t, 0.0, empty.PrecioMin)
	assert.Equal(t, 0.0, empty.PrecioMax)
	assert.Empty(t, empty.PorMarca)

	for _, v := range []Vehiculo{
		{ID: "1", MarcaModelo: "Toyota Corolla", Precio: 10000},
		{ID: "2", MarcaModelo: "Toyota Yaris", Precio: 20000},
		{ID: "3", MarcaModelo: "Honda Civic", Precio: 30000},
	} {
		_, err := c.Save(v)
		require.NoError(t, err)
	}

	stats := c.Estadisticas()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 20000.0, stats.PrecioPromedio)
	assert.Equal(t, 10000.0, stats.PrecioMin)
	assert.Equal(t, 30000.0, stats.PrecioMax)
	assert.Equal(t, map[string]int{"Toyota": 2, "Honda": 1}, stats.PorMarca)
}

func TestSyncWithServerMerge(t *testing.T) {
	c, store := newTestCache(t)

	_, err := c.Save(Vehiculo{ID: "a", MarcaModelo: "Toyota Corolla", Precio: 1})
	require.NoError(t, err)

	remote := []Vehiculo{
		{ID: "a", MarcaModelo: "Toyota Corolla", Precio: 2},
		{ID: "b", MarcaModelo: "Honda Civic", Precio: 3},
	}
	require.NoError(t, c.SyncWithServer(remote))

	merged := c.List()
	require.Len(t, merged, 2)
	assert.Equal(t, "a", merged[0].ID)
	assert.Equal(t, 2.0, merged[0].Precio) // remote wins on matching id
	assert.Equal(t, "b", merged[1].ID)
	assert.Equal(t, 3.0, merged[1].Precio)

	last, err := store.GetLastSyncTime()
	require.NoError(t, err)
	assert.NotEmpty(t, last)
}

func TestSyncDoesNotDeleteLocalOnlyRecords(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.Save(Vehiculo{ID: "local-only", MarcaModelo: "Seat Ibiza", Precio: 5})
	require.NoError(t, err)

	require.NoError(t, c.SyncWithServer([]Vehiculo{{ID: "b", MarcaModelo: "Honda Civic", Precio: 3}}))

	assert.NotNil(t, c.GetByID("local-only"))
	assert.NotNil(t, c.GetByID("b"))
}

func TestClearAllLeavesOtherKeys(t *testing.T) {
	c, store := newTestCache(t)

	_, err := c.Save(Vehiculo{ID: "a", MarcaModelo: "Toyota Corolla", Precio: 1})
	require.NoError(t, err)
	require.NoError(t, store.SetItem(localstore.DeviceIDKey, "device-x"))

	require.NoError(t, c.ClearAll())

	assert.Empty(t, c.List())
	id, err := store.GetItem(localstore.DeviceIDKey)
	require.NoError(t, err)
	assert.Equal(t, "device-x", id)
}

func TestGetByID(t *testing.T) {
	c, _ := newTestCache(t)

	saved, err := c.Save(Vehiculo{MarcaModelo: "Toyota Corolla", Precio: 10000})
	require.NoError(t, err)

	found := c.GetByID(saved.ID)
	require.NotNil(t, found)
	assert.Equal(t, "Toyota Corolla", found.MarcaModelo)

	assert.Nil(t, c.GetByID("missing"))
}
