package catalog

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/MikeMC777/storefront/internal/product"
)

// Options are the selectable values of the option-backed filter dimensions.
type Options struct {
	Categories []product.Option `json:"categories"`
	Brands     []product.Option `json:"brands"`
	Colors     []product.Option `json:"colors"`
	Sizes      []product.Option `json:"sizes"`
}

// LoadOptions fetches the four option lists in parallel. Any failure fails the whole load.
func LoadOptions(ctx context.Context, src Source) (Options, error) {
	var opts Options
	g, ctx := errgroup.WithContext(ctx)
	targets := []struct {
		kind product.OptionKind
		dst  *[]product.Option
	}{
		{product.OptionCategories, &opts.Categories},
		{product.OptionBrands, &opts.Brands},
		{product.OptionColors, &opts.Colors},
		{product.OptionSizes, &opts.Sizes},
	}
	for _, t := range targets {
		t := t
		g.Go(func() error {
			list, err := src.Options(ctx, t.kind)
			if err != nil {
				return err
			}
			*t.dst = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Options{}, err
	}
	return opts, nil
}
