package market

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/estateshare-go/network"
	"github.com/bitfsorg/estateshare-go/rental"
)

func TestMethodSelector(t *testing.T) {
	sel := MethodSelector("transfer(address,uint256)")
	assert.Equal(t, "a9059cbb", hex.EncodeToString(sel[:]))
}

func TestEncodeRentCall(t *testing.T) {
	data := EncodeRentCall(7, 3)
	require.Len(t, data, 68)
	sel := MethodSelector(RentMethodSignature)
	assert.Equal(t, sel[:], data[:4])
	assert.Equal(t, uint64(7), new(big.Int).SetBytes(data[4:36]).Uint64())
	assert.Equal(t, uint64(3), new(big.Int).SetBytes(data[36:68]).Uint64())
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeAuto, "auto": ModeAuto, "onchain": ModeOnChain, "simulated": ModeSimulated} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMode("hybrid")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestSelectCapability(t *testing.T) {
	supports := func(ok bool, err error) *network.MockContract {
		return &network.MockContract{SupportsMethodFn: func(_ context.Context, method string) (bool, error) {
			assert.Equal(t, "rentProperty", method)
			return ok, err
		}}
	}
	onchain := NewOnChainRental(&network.MockLedger{}, nil)
	simulated := NewOrchestrator(rental.NewMemoryStore(), nil)
	ctx := context.Background()

	got, err := SelectCapability(ctx, ModeAuto, supports(true, nil), onchain, simulated)
	require.NoError(t, err)
	assert.Equal(t, ModeOnChain, got.Mode())

	got, err = SelectCapability(ctx, ModeAuto, supports(false, nil), onchain, simulated)
	require.NoError(t, err)
	assert.Equal(t, ModeSimulated, got.Mode())

	_, err = SelectCapability(ctx, ModeAuto, supports(false, errors.New("down")), onchain, simulated)
	assert.Error(t, err)

	got, err = SelectCapability(ctx, ModeSimulated, nil, onchain, simulated)
	require.NoError(t, err)
	assert.Equal(t, ModeSimulated, got.Mode())

	got, err = SelectCapability(ctx, ModeOnChain, nil, onchain, simulated)
	require.NoError(t, err)
	assert.Equal(t, ModeOnChain, got.Mode())

	_, err = SelectCapability(ctx, ModeOnChain, nil, nil, simulated)
	assert.Error(t, err)

	_, err = SelectCapability(ctx, Mode("x"), nil, onchain, simulated)
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestOnChainRentalRent(t *testing.T) {
	ledger := &network.MockLedger{
		SendFn: func(_ context.Context, method string, params []interface{}, opts network.SendOpts) (*network.Receipt, error) {
			assert.Equal(t, "rentProperty", method)
			assert.Equal(t, []interface{}{uint64(4), 2}, params)
			assert.Equal(t, "tenant", opts.From)
			assert.Equal(t, "1000", opts.Value.String())
			return &network.Receipt{TxID: "c-1", Events: []network.Event{{
				Name:   "PropertyRented",
				Values: map[string]string{"startDate": "100", "endDate": "63072100", "yearlyRent": "500"},
			}}}, nil
		},
	}
	r := NewOnChainRental(ledger, nil)
	conf, err := r.Rent(context.Background(), Session{Account: "tenant"},
		RentRequest{PropertyID: 4, DurationYears: 2, TotalPayment: big.NewInt(1000)})
	require.NoError(t, err)
	assert.Equal(t, ModeOnChain, conf.Mode)
	assert.Equal(t, int64(100), conf.Record.StartDate)
	assert.Equal(t, int64(63072100), conf.Record.EndDate)
	assert.Equal(t, "500", conf.Record.YearlyRent.String())
	assert.Equal(t, "tenant", conf.Record.Tenant)
	assert.True(t, conf.Record.IsActive)
}

func TestOnChainRentalErrors(t *testing.T) {
	rejected := errors.New("execution reverted")
	r := NewOnChainRental(&network.MockLedger{
		SendFn: func(context.Context, string, []interface{}, network.SendOpts) (*network.Receipt, error) {
			return nil, rejected
		},
	}, nil)
	ctx := context.Background()

	_, err := r.Rent(ctx, Session{Account: "tenant"}, RentRequest{PropertyID: 1, DurationYears: 12, TotalPayment: big.NewInt(1)})
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = r.Rent(ctx, Session{}, RentRequest{PropertyID: 1, DurationYears: 1, TotalPayment: big.NewInt(1)})
	assert.ErrorIs(t, err, ErrNoAccount)

	_, err = r.Rent(ctx, Session{Account: "tenant"}, RentRequest{PropertyID: 1, DurationYears: 1, TotalPayment: big.NewInt(1)})
	assert.ErrorIs(t, err, ErrRentalRejected)
	assert.ErrorIs(t, err, rejected)
}

func TestOnChainRentalDetails(t *testing.T) {
	r := NewOnChainRental(&network.MockLedger{
		CallFn: func(_ context.Context, method string, params []interface{}, result interface{}) error {
			assert.Equal(t, "getRentalDetails", method)
			out := result.(**rental.Record)
			if params[0] == uint64(2) {
				return nil
			}
			*out = &rental.Record{Tenant: "t", EndDate: 10, YearlyRent: big.NewInt(3), IsActive: true}
			return nil
		},
	}, nil)

	rec, err := r.Details(context.Background(), Session{}, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rec.PropertyID)
	assert.Equal(t, "t", rec.Tenant)

	rec, err = r.Details(context.Background(), Session{}, 2)
	require.NoError(t, err)
	assert.True(t, rec.Equal(rental.Absent()))
}

func TestOrchestratorDetails(t *testing.T) {
	store := rental.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), 3, rental.Record{PropertyID: 3, Tenant: "t", YearlyRent: big.NewInt(1), IsActive: true}))
	o := NewOrchestrator(store, nil)

	rec, err := o.Details(context.Background(), Session{}, 3)
	require.NoError(t, err)
	assert.Equal(t, "t", rec.Tenant)

	rec, err = o.Details(context.Background(), Session{}, 4)
	require.NoError(t, err)
	assert.False(t, rec.IsActive)
}
