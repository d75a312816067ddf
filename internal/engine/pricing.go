package engine

import (
	"context"

	"github.com/arinvel/slot-reservation/internal/model"
)

// Pricer is the external pricing provider.  The coordinator calls it
// inside the edit transaction and stores whatever it returns; the engine
// has no opinion about how the number is derived.
type Pricer interface {
	// Quote returns the total price in cents for the given party on the
	// given service/slot context.
	Quote(ctx context.Context, svc *model.Service, slot *model.Slot, adults, children uint32) (uint32, error)
}

// BasePricer is the default Pricer: the service's per-unit base price
// multiplied by the party size, children at half rate rounded down.
type BasePricer struct{}

func (BasePricer) Quote(_ context.Context, svc *model.Service, _ *model.Slot, adults, children uint32) (uint32, error) {
	return adults*svc.BasePriceCents + children*svc.BasePriceCents/2, nil
}

// PricerFunc adapts a plain function to the Pricer interface.
type PricerFunc func(ctx context.Context, svc *model.Service, slot *model.Slot, adults, children uint32) (uint32, error)

func (f PricerFunc) Quote(ctx context.Context, svc *model.Service, slot *model.Slot, adults, children uint32) (uint32, error) {
	return f(ctx, svc, slot, adults, children)
}
