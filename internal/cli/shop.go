package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/questline-app/questline/internal/app/progression"
)

func init() {
	shopCmd.AddCommand(shopBuyCmd)
	rootCmd.AddCommand(shopCmd)
}

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "List shop items",
	RunE:  runShop,
}

var shopBuyCmd = &cobra.Command{
	Use:   "buy <item-id>",
	Short: "Buy a shop item",
	Args:  cobra.ExactArgs(1),
	RunE:  runShopBuy,
}

func runShop(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	prog := progression.NewService(db)
	for _, item := range prog.Catalog() {
		fmt.Printf("%-14s %4dg  %s\n", item.ID, item.Price, item.Description)
	}
	return nil
}

func runShopBuy(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	prog := progression.NewService(db)
	learner, err := currentLearner(prog)
	if err != nil {
		return err
	}

	res, err := prog.BuyItem(learner.ID, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Bought %s for %dg (%dg left)\n", res.ItemID, res.GoldSpent, res.NewGold)
	return nil
}
