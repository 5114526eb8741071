// Command storefront is a thin command-line surface over the client core:
// browse the catalog, manage the cart, check out, review products. It is a
// stand-in for the web UI; everything it prints comes from server-confirmed
// state.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/example/storefront/internal/cartstore"
	"github.com/example/storefront/internal/client"
	"github.com/example/storefront/internal/session"
	"github.com/example/storefront/internal/shop"
)

func main() {
	baseURL := getEnv("SHOP_API_URL", "http://localhost:8080")
	token := os.Getenv("SHOP_TOKEN")

	api := client.New(baseURL, client.StaticToken(token), nil)
	store := cartstore.New(api)
	sess := session.New(api, store)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	if err := run(ctx, api, sess, os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("[Storefront] %v", err)
	}
}

func run(ctx context.Context, api *client.Client, sess *session.Session, cmd string, args []string) error {
	switch cmd {
	case "categories":
		categories, err := api.ListCategories(ctx)
		if err != nil {
			return err
		}
		for _, c := range categories {
			fmt.Printf("%-24s %s\n", c.Slug, c.Name)
		}
		return nil

	case "products":
		if len(args) < 1 {
			return fmt.Errorf("usage: storefront products <category-slug> [query] [sort]")
		}
		filter := client.Filter{}
		if len(args) > 1 {
			filter.Query = args[1]
		}
		if len(args) > 2 {
			filter.Sort = client.Sort(args[2])
		}
		listing, err := api.ListProducts(ctx, args[0], filter)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", listing.Category.Name)
		for _, p := range listing.Products {
			fmt.Printf("  %s  %-40s %s  (stock %d)\n", p.ID, p.Name, cents(p.Price), p.Stock)
		}
		return nil

	case "product":
		if len(args) != 1 {
			return fmt.Errorf("usage: storefront product <id>")
		}
		p, err := api.GetProduct(ctx, args[0])
		if err != nil {
			return err
		}
		printProduct(p)
		return nil

	case "cart":
		cart, err := sess.Cart().Refresh(ctx)
		if err != nil {
			return err
		}
		printCart(cart)
		return nil

	case "add":
		if len(args) != 2 {
			return fmt.Errorf("usage: storefront add <product-id> <quantity>")
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: %q", shop.ErrInvalidQuantity, args[1])
		}
		msg, err := sess.AddItem(ctx, args[0], qty)
		if err != nil {
			return err
		}
		fmt.Println(msg)
		printCart(sess.Cart().Snapshot())
		return nil

	case "increase", "decrease", "remove":
		if len(args) != 1 {
			return fmt.Errorf("usage: storefront %s <item-id>", cmd)
		}
		msg, err := sess.Mutate(ctx, args[0], client.Action(cmd))
		if err != nil {
			return err
		}
		fmt.Println(msg)
		printCart(sess.Cart().Snapshot())
		return nil

	case "checkout":
		result, err := sess.Checkout(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		fmt.Printf("Order %s  total %s  status %s\n", result.Order.ID, cents(result.Order.Total), result.Order.Status)
		return nil

	case "orders":
		orders, err := api.ListOrders(ctx)
		if err != nil {
			return err
		}
		for _, o := range orders {
			fmt.Printf("%s  %-10s %s  %s\n", o.ID, o.Status, cents(o.Total), o.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil

	case "order":
		if len(args) != 1 {
			return fmt.Errorf("usage: storefront order <id>")
		}
		o, err := api.GetOrder(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Order %s  status %s  placed %s\n", o.ID, o.Status, o.CreatedAt.Format("2006-01-02 15:04"))
		for _, item := range o.Items {
			fmt.Printf("  %dx %-40s %s\n", item.Quantity, item.Product.Name, cents(item.Total))
		}
		fmt.Printf("Total %s\n", cents(o.Total))
		return nil

	case "review":
		if len(args) < 3 {
			return fmt.Errorf("usage: storefront review <product-id> <rating> <comment>")
		}
		rating, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: rating %q", shop.ErrValidation, args[1])
		}
		result, err := sess.SubmitReview(ctx, args[0], rating, strings.Join(args[2:], " "))
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		printProduct(result.Product)
		return nil

	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printProduct(p shop.Product) {
	fmt.Printf("%s  %s  (stock %d)\n%s\n", p.Name, cents(p.Price), p.Stock, p.Description)
	for _, r := range p.Reviews {
		fmt.Printf("  [%d/5] %s (%s)\n", r.Rating, r.Comment, r.Author)
	}
}

func printCart(cart shop.Cart) {
	if len(cart.Items) == 0 {
		fmt.Println("Cart is empty")
		return
	}
	for _, item := range cart.Items {
		fmt.Printf("  %s  %dx %-40s %s\n", item.ID, item.Quantity, item.Product.Name, cents(item.Total()))
	}
	fmt.Printf("Grand total %s\n", cents(cart.GrandTotal()))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func cents(v int) string {
	return fmt.Sprintf("$%d.%02d", v/100, v%100)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: storefront <command> [args]

  categories                        list categories
  products <slug> [query] [sort]    list a category's products
  product <id>                      show a product with reviews
  cart                              show the cart
  add <product-id> <quantity>       add a product to the cart
  increase|decrease|remove <item>   mutate a cart line
  checkout                          place the order
  orders                            list your orders
  order <id>                        show one order
  review <product-id> <rating> <comment...>

Environment: SHOP_API_URL (default http://localhost:8080), SHOP_TOKEN`)
}
