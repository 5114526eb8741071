package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/example/storefront/internal/shop"
)

// Sort orders a product listing by price.
type Sort string

const (
	SortNone      Sort = ""
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
)

// Filter narrows a category's product listing. Zero-valued fields impose no
// constraint and are omitted from the query string.
type Filter struct {
	Query    string // substring match on name or description
	MinPrice int    // inclusive lower bound, cents
	MaxPrice int    // inclusive upper bound, cents
	Sort     Sort
}

func (f Filter) query() url.Values {
	q := url.Values{}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	if f.MinPrice > 0 {
		q.Set("min_price", strconv.Itoa(f.MinPrice))
	}
	if f.MaxPrice > 0 {
		q.Set("max_price", strconv.Itoa(f.MaxPrice))
	}
	if f.Sort != SortNone {
		q.Set("sort", string(f.Sort))
	}
	return q
}

// CategoryProducts is the listing for one category.
type CategoryProducts struct {
	Category shop.Category  `json:"category"`
	Products []shop.Product `json:"products"`
}

// ListCategories fetches all categories. Pure read, no caching.
func (c *Client) ListCategories(ctx context.Context) ([]shop.Category, error) {
	var categories []shop.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, "", &categories); err != nil {
		return nil, err
	}
	for _, cat := range categories {
		if err := cat.Validate(); err != nil {
			return nil, err
		}
	}
	return categories, nil
}

// ListProducts fetches a category's products, filtered server-side.
func (c *Client) ListProducts(ctx context.Context, categorySlug string, filter Filter) (CategoryProducts, error) {
	var listing CategoryProducts
	if err := c.do(ctx, http.MethodGet, "/category/"+url.PathEscape(categorySlug), filter.query(), nil, "", &listing); err != nil {
		return CategoryProducts{}, err
	}
	if err := listing.Category.Validate(); err != nil {
		return CategoryProducts{}, err
	}
	for _, p := range listing.Products {
		if err := p.Validate(); err != nil {
			return CategoryProducts{}, err
		}
	}
	return listing, nil
}

// GetProduct fetches one product with its reviews embedded.
func (c *Client) GetProduct(ctx context.Context, id string) (shop.Product, error) {
	var product shop.Product
	if err := c.do(ctx, http.MethodGet, "/product/"+url.PathEscape(id), nil, nil, "", &product); err != nil {
		return shop.Product{}, err
	}
	if err := product.Validate(); err != nil {
		return shop.Product{}, err
	}
	return product, nil
}

// SubmitReview posts a rating and comment for a product. Input validation is
// the session's job client-side and the server's authoritatively.
func (c *Client) SubmitReview(ctx context.Context, productID string, rating int, comment string) (string, error) {
	body := struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}{Rating: rating, Comment: comment}

	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/product/"+url.PathEscape(productID)+"/reviews", nil, body, "", &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
