package scan

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// SubsListAction prints the active subscriptions.
func SubsListAction(c *cli.Context) error {
	database, err := openStore(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	subs, err := database.ListSubscriptions()
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		fmt.Println("No active subscriptions")
		return nil
	}
	return printFormatted(subs, c.String("format"))
}

// SubsAddAction creates (or reactivates) a subscription.
func SubsAddAction(c *cli.Context) error {
	name := c.String("name")
	if name == "" {
		fmt.Fprintln(os.Stderr, "Error: --name is required")
		os.Exit(1)
	}

	database, err := openStore(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	var price *float64
	if c.IsSet("price") {
		p := c.Float64("price")
		price = &p
	}

	if _, err := database.AddSubscription(name, c.String("retailer"), price, c.Int("frequency-days")); err != nil {
		return err
	}
	fmt.Printf("Subscribed to %q (every %d days)\n", name, c.Int("frequency-days"))
	return nil
}

// SubsRemoveAction deactivates a subscription by product name.
func SubsRemoveAction(c *cli.Context) error {
	name := c.String("name")
	if name == "" {
		fmt.Fprintln(os.Stderr, "Error: --name is required")
		os.Exit(1)
	}

	database, err := openStore(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := database.DeactivateSubscription(name); err != nil {
		return err
	}
	fmt.Printf("Unsubscribed from %q\n", name)
	return nil
}
