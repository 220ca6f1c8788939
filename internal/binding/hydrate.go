package binding

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/codec"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/provider"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/selection"
)

// Report summarizes a hydration
type Report struct {
	Selected int
	Dropped  []string // stored ids the provider no longer knows
	Degraded bool     // stored value had the wrong shape and was ignored
}

// Hydrate reads the stored value, resolves every referenced id and makes the
// result the selection. Nothing is written to the store while it runs. Ids
// that no longer resolve are dropped and logged. A stored value of the wrong
// shape degrades to an empty selection. A failed store read leaves the
// binding hydrating so the caller can retry.
func (b *Binding) Hydrate(ctx context.Context) (Report, error) {
	b.state.Store(int32(StateHydrating))

	b.mu.Lock()
	defer b.mu.Unlock()

	raw, err := b.store.GetValue(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("binding: read stored value: %w", err)
	}

	var report Report
	stored, err := codec.Parse(raw, b.mode)
	if err != nil {
		b.logger.Warn("Ignoring stored value of unexpected shape",
			zap.ByteString("value", raw),
			zap.Error(err))
		stored = nil
		report.Degraded = true
	}

	refs := codec.Refs(stored)
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = b.normalize(r.ID)
	}

	items, err := b.resolve(ctx, ids)
	if err != nil {
		return Report{}, err
	}

	set, err := selection.New(b.mode, selection.WithMaxItems(b.maxItems))
	if err != nil {
		return Report{}, fmt.Errorf("binding: %w", err)
	}
	for i, item := range items {
		if item == nil {
			b.logger.Info("Dropping stored id that no longer resolves", zap.String("id", ids[i]))
			report.Dropped = append(report.Dropped, ids[i])
			continue
		}
		it := *item
		if b.mode.IsKeyed() && refs[i].VariantHint != "" {
			it.VariantKey = refs[i].VariantHint
		}
		if _, err := set.Add(it); err != nil {
			b.logger.Info("Dropping stored entry", zap.String("id", ids[i]), zap.Error(err))
			report.Dropped = append(report.Dropped, ids[i])
		}
	}

	b.set = set
	b.lastPushed = stored
	b.rows = set.Len()
	report.Selected = set.Len()
	b.state.Store(int32(StateReady))

	b.logger.Debug("Hydrated selection",
		zap.Int("selected", report.Selected),
		zap.Strings("dropped", report.Dropped),
		zap.Bool("degraded", report.Degraded))
	b.bus.Publish(domain.HydrationCompletedEvent{
		Selected: report.Selected,
		Dropped:  report.Dropped,
		Degraded: report.Degraded,
	})
	b.requestHeightLocked()
	return report, nil
}

// resolve looks ids up positionally, with one batched call when the provider
// supports it and bounded single lookups otherwise. Only context errors abort;
// any other failure resolves the affected ids to nil.
func (b *Binding) resolve(ctx context.Context, ids []string) ([]*domain.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	items, err := b.provider.GetItems(ctx, provider.ItemsRequest{IDs: ids})
	switch {
	case err == nil && len(items) == len(ids):
		return items, nil
	case err == nil:
		b.logger.Warn("Batch lookup returned a misaligned result, resolving one by one",
			zap.Int("want", len(ids)), zap.Int("got", len(items)))
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case provider.IsNotSupported(err):
		b.logger.Debug("Provider has no batch lookup, resolving one by one")
	default:
		b.logger.Warn("Batch lookup failed, resolving one by one", zap.Error(err))
	}

	out := make([]*domain.Item, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.parallel)
	for i, id := range ids {
		g.Go(func() error {
			item, err := b.provider.GetItem(gctx, id)
			if err != nil {
				if gctx.Err() != nil && errors.Is(err, gctx.Err()) {
					return err
				}
				b.logger.Info("Lookup failed during hydration", zap.String("id", id), zap.Error(err))
				return nil
			}
			out[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
