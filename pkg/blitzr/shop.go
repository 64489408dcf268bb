package blitzr

import "context"

func shopEndpoint(entity string, product ProductType) (string, error) {
	switch product {
	case ProductCD, ProductLP, ProductMP3, ProductMerch:
		return "buy/" + entity + "/" + string(product) + "/", nil
	}
	return "", invalid("unknown product type %q", product)
}

func shop(ctx context.Context, c *Client, entity string, product ProductType, ref Ref) ([]Product, error) {
	endpoint, err := shopEndpoint(entity, product)
	if err != nil {
		return nil, err
	}
	v, err := ref.values()
	if err != nil {
		return nil, err
	}
	return getList[Product](ctx, c, endpoint, v)
}

// ShopArtist lists products of an artist.
func (c *Client) ShopArtist(ctx context.Context, product ProductType, ref Ref) ([]Product, error) {
	return shop(ctx, c, "artist", product, ref)
}

// ShopLabel lists products of a label. Labels have no mp3 products.
func (c *Client) ShopLabel(ctx context.Context, product ProductType, ref Ref) ([]Product, error) {
	return shop(ctx, c, "label", product, ref)
}

// ShopRelease lists products of a release. Releases have no merch products.
func (c *Client) ShopRelease(ctx context.Context, product ProductType, ref Ref) ([]Product, error) {
	return shop(ctx, c, "release", product, ref)
}

// ShopTrack lists products of a track.
func (c *Client) ShopTrack(ctx context.Context, uuid string) ([]Product, error) {
	v, err := uuidValues(uuid)
	if err != nil {
		return nil, err
	}
	return getList[Product](ctx, c, "buy/track/", v)
}
