package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/camera_shop/internal/models"
	"github.com/Skotchmaster/camera_shop/internal/transport"
	"github.com/Skotchmaster/camera_shop/pkg/storefront"
)

func price(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func table(w io.Writer, header string, rows func(tw *tabwriter.Writer)) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	return tw.Flush()
}

func printProducts(w io.Writer, products []models.Product) error {
	if len(products) == 0 {
		_, err := fmt.Fprintln(w, "No products found")
		return err
	}
	return table(w, "ID\tNAME\tBRAND\tPRICE\tSTOCK\tRATING", func(tw *tabwriter.Writer) {
		for _, p := range products {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.1f (%d)\n", p.ID, p.Name, p.Brand, price(p.Price), p.Stock, p.Rating, p.NumReviews)
		}
	})
}

func printPage(w io.Writer, page *transport.ProductPage) error {
	if err := printProducts(w, page.Products); err != nil {
		return err
	}
	if page.Pages > 1 {
		_, err := fmt.Fprintf(w, "page %d of %d\n", page.Page, page.Pages)
		return err
	}
	return nil
}

func printProduct(w io.Writer, p *models.Product) error {
	fmt.Fprintf(w, "%s  (%s)\n", p.Name, p.ID)
	fmt.Fprintf(w, "%s / %s   %s   stock %d   rating %.1f from %d reviews\n", p.Brand, p.Category, price(p.Price), p.Stock, p.Rating, p.NumReviews)
	if p.Description != "" {
		fmt.Fprintf(w, "\n%s\n", p.Description)
	}
	if len(p.Features) > 0 {
		fmt.Fprintln(w, "\nFeatures:")
		for _, f := range p.Features {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}
	if len(p.Reviews) > 0 {
		fmt.Fprintln(w, "\nReviews:")
		for _, r := range p.Reviews {
			fmt.Fprintf(w, "  %s %s: %s\n", strings.Repeat("*", r.Rating), r.Name, r.Comment)
		}
	}
	return nil
}

func printCart(w io.Writer, cart *storefront.Cart) error {
	items := cart.Items()
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "Your cart is empty")
		return err
	}
	err := table(w, "PRODUCT\tNAME\tQTY\tPRICE\tLINE", func(tw *tabwriter.Writer) {
		for _, it := range items {
			line := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Qty)))
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t$%s\n", it.ProductID, it.Name, it.Qty, price(it.Price), line.StringFixed(2))
		}
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Subtotal (%d items): %s\n", cart.Count(), price(cart.Subtotal()))
	if a := cart.ShippingAddress(); a.Address != "" {
		fmt.Fprintf(w, "Ship to: %s, %s %s, %s\n", a.Address, a.City, a.PostalCode, a.Country)
	}
	if m := cart.PaymentMethod(); m != "" {
		fmt.Fprintf(w, "Payment: %s\n", m)
	}
	return nil
}

func printOrders(w io.Writer, orders []models.Order) error {
	if len(orders) == 0 {
		_, err := fmt.Fprintln(w, "No orders")
		return err
	}
	return table(w, "ID\tUSER\tDATE\tTOTAL\tPAID\tDELIVERED", func(tw *tabwriter.Writer) {
		for _, o := range orders {
			user := ""
			if o.User != nil {
				user = o.User.Name
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", o.ID, user, o.CreatedAt.Format("2006-01-02"), price(o.TotalPrice), yesNo(o.IsPaid), yesNo(o.IsDelivered))
		}
	})
}

func printOrder(w io.Writer, o *models.Order) error {
	fmt.Fprintf(w, "Order %s\n", o.ID)
	a := o.ShippingAddress
	fmt.Fprintf(w, "Ship to: %s, %s %s, %s\n", a.Address, a.City, a.PostalCode, a.Country)
	fmt.Fprintf(w, "Payment: %s   paid: %s   delivered: %s\n\n", o.PaymentMethod, yesNo(o.IsPaid), yesNo(o.IsDelivered))
	err := table(w, "ITEM\tQTY\tPRICE", func(tw *tabwriter.Writer) {
		for _, it := range o.OrderItems {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", it.Name, it.Qty, price(it.Price))
		}
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nItems %s  Shipping %s  Tax %s  Total %s\n", price(o.ItemsPrice), price(o.ShippingPrice), price(o.TaxPrice), price(o.TotalPrice))
	return nil
}

func printUsers(w io.Writer, users []models.User) error {
	if len(users) == 0 {
		_, err := fmt.Fprintln(w, "No users")
		return err
	}
	return table(w, "ID\tNAME\tEMAIL\tADMIN", func(tw *tabwriter.Writer) {
		for _, u := range users {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, yesNo(u.IsAdmin()))
		}
	})
}

func printUser(w io.Writer, u *models.User) error {
	_, err := fmt.Fprintf(w, "%s <%s>\nid: %s\nrole: %s\n", u.Name, u.Email, u.ID, u.Role)
	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
