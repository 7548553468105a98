package pricing

import (
	"testing"

	"github.com/harborline/cargosim/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin_CoversEveryRoute(t *testing.T) {
	table, err := Builtin()
	require.NoError(t, err)

	for _, origin := range domain.AllPorts() {
		for _, dest := range domain.AllPorts() {
			if origin == dest {
				continue
			}
			for _, ct := range []domain.ContainerType{domain.ContainerDry, domain.ContainerReefer} {
				price, ok := table.Price(origin, dest, ct)
				assert.True(t, ok, "missing %s", PriceKey(origin, dest, ct))
				assert.Greater(t, price, 0.0)
			}
		}
	}
}

func TestBuiltin_ReeferCostsMore(t *testing.T) {
	table := MustBuiltin()
	dry, _ := table.Price(domain.PortSBY, domain.PortMKS, domain.ContainerDry)
	reefer, _ := table.Price(domain.PortSBY, domain.PortMKS, domain.ContainerReefer)
	assert.Greater(t, reefer, dry)
}

func TestModel_Lookup(t *testing.T) {
	table := MustBuiltin()
	builtinDry, ok := table.Price(domain.PortSBY, domain.PortMKS, domain.ContainerDry)
	require.True(t, ok)

	tests := []struct {
		name     string
		override map[string]float64
		origin   domain.PortCode
		dest     domain.PortCode
		ct       domain.ContainerType
		want     float64
	}{
		{
			name:   "builtin when no override",
			origin: domain.PortSBY, dest: domain.PortMKS, ct: domain.ContainerDry,
			want: builtinDry,
		},
		{
			name:     "override wins",
			override: map[string]float64{"SBY-MKS-Dry": 1_234_000},
			origin:   domain.PortSBY, dest: domain.PortMKS, ct: domain.ContainerDry,
			want: 1_234_000,
		},
		{
			name:     "override miss falls back to builtin",
			override: map[string]float64{"SBY-MKS-Reefer": 1_234_000},
			origin:   domain.PortSBY, dest: domain.PortMKS, ct: domain.ContainerDry,
			want: builtinDry,
		},
		{
			name:   "unknown route uses fallback",
			origin: domain.PortSBY, dest: domain.PortSBY, ct: domain.ContainerDry,
			want: FallbackPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(table, tt.override)
			assert.Equal(t, tt.want, m.Lookup(tt.origin, tt.dest, tt.ct))
		})
	}
}

func TestModel_NilTableUsesFallback(t *testing.T) {
	m := NewModel(nil, nil)
	assert.Equal(t, float64(FallbackPrice), m.Lookup(domain.PortSBY, domain.PortMKS, domain.ContainerDry))
	assert.False(t, m.HasOverride())
}

func TestTable_Color(t *testing.T) {
	table := MustBuiltin()
	assert.Equal(t, "red", table.Color(domain.PortSBY))
	assert.Equal(t, DefaultColor, table.Color(domain.PortCode("XXX")))
}

func TestParseTable_Invalid(t *testing.T) {
	_, err := ParseTable([]byte("routes: [unclosed"))
	assert.Error(t, err)
}

func TestParseTable_DefaultsFallback(t *testing.T) {
	table, err := ParseTable([]byte("routes:\n  SBY:\n    MKS: {dry: 100, reefer: 200}\n"))
	require.NoError(t, err)
	assert.Equal(t, float64(FallbackPrice), table.Fallback())

	price, ok := table.Price(domain.PortSBY, domain.PortMKS, domain.ContainerReefer)
	assert.True(t, ok)
	assert.Equal(t, 200.0, price)
}
