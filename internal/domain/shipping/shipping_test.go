package shipping

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kart-checkout/internal/domain/order"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestStrategies(t *testing.T) {
	tests := []struct {
		name       string
		strategy   Strategy
		discounted decimal.Decimal
		want       decimal.Decimal
	}{
		{name: "normal", strategy: Normal{}, discounted: d("218.5"), want: d("10.925")},
		{name: "normal on zero", strategy: Normal{}, discounted: decimal.Zero, want: decimal.Zero},
		{name: "express", strategy: Express{}, discounted: d("540"), want: d("69")},
		{name: "express on zero", strategy: Express{}, discounted: decimal.Zero, want: d("15")},
		{name: "teleport", strategy: Teleport{}, discounted: d("200"), want: d("50")},
		{name: "func adapter", strategy: StrategyFunc(func(decimal.Decimal) decimal.Decimal { return d("1") }), discounted: d("9"), want: d("1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.strategy.Cost(tt.discounted)
			assert.True(t, tt.want.Equal(got), "expected %s, got %s", tt.want, got)
		})
	}
}

func TestForType(t *testing.T) {
	tests := []struct {
		tag     order.ShippingType
		want    Strategy
		wantErr bool
	}{
		{tag: order.ShippingNormal, want: Normal{}},
		{tag: order.ShippingExpress, want: Express{}},
		{tag: order.ShippingTeleport, want: Teleport{}},
		{tag: "EXPRESSO", want: Express{}},
		{tag: "Teletransporte", want: Teleport{}},
		{tag: "Drone", wantErr: true},
		{tag: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.tag), func(t *testing.T) {
			got, err := ForType(tt.tag)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownType)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForTypeLenient(t *testing.T) {
	assert.Equal(t, Normal{}, ForTypeLenient(order.ShippingNormal))
	assert.Equal(t, Express{}, ForTypeLenient(order.ShippingExpress))
	assert.Equal(t, Teleport{}, ForTypeLenient("Drone"))
	assert.Equal(t, Teleport{}, ForTypeLenient(""))
}

func TestResolvers(t *testing.T) {
	_, err := StrictResolver()("Drone")
	require.ErrorIs(t, err, ErrUnknownType)

	s, err := LenientResolver()("Drone")
	require.NoError(t, err)
	assert.Equal(t, Teleport{}, s)
}

func TestCalculator_Undefined(t *testing.T) {
	c := NewCalculator(nil)

	_, err := c.Calculate(d("100"))
	require.ErrorIs(t, err, ErrStrategyUndefined)
}

func TestCalculator_SwapAffectsOnlyNextCall(t *testing.T) {
	c := NewCalculator(Normal{})

	first, err := c.Calculate(d("200"))
	require.NoError(t, err)

	c.SetStrategy(Express{})

	second, err := c.Calculate(d("200"))
	require.NoError(t, err)

	assert.True(t, d("10").Equal(first), "normal result changed to %s", first)
	assert.True(t, d("35").Equal(second), "got %s", second)
}

func TestCalculator_AllRegisteredTypes(t *testing.T) {
	c := NewCalculator(nil)
	want := map[order.ShippingType]decimal.Decimal{
		order.ShippingNormal:   d("10"),
		order.ShippingExpress:  d("35"),
		order.ShippingTeleport: d("50"),
	}

	for tag, cost := range want {
		s, err := ForType(tag)
		require.NoError(t, err)
		c.SetStrategy(s)

		got, err := c.Calculate(d("200"))
		require.NoError(t, err)
		assert.True(t, cost.Equal(got), "%s: expected %s, got %s", tag, cost, got)
	}
}

func TestShippingProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	amounts := gen.Int64Range(0, 10_000_000).Map(func(v int64) decimal.Decimal {
		return decimal.New(v, -2)
	})

	properties.Property("teleport is constant", prop.ForAll(
		func(v decimal.Decimal) bool {
			return Teleport{}.Cost(v).Equal(teleportFlat)
		},
		amounts,
	))

	properties.Property("express costs more than normal", prop.ForAll(
		func(v decimal.Decimal) bool {
			return Express{}.Cost(v).GreaterThan(Normal{}.Cost(v))
		},
		amounts,
	))

	properties.TestingRun(t)
}
