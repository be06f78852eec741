package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newPoolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pools",
		Short: "List staking pools of the configured network",
		Run: func(cmd *cobra.Command, args []string) {
			if err := listPools(cmd.Context()); err != nil {
				log.Fatal().Err(err).Msg("Failed to list pools")
			}
		},
	}
}

func listPools(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	pools, err := a.wallet.StakingPools(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "POOL\tSTAKE (NEAR)\tFEE\tUPTIME")
	for _, p := range pools {
		fee := "-"
		if p.Fee != nil {
			fee = fmt.Sprintf("%.2f%%", *p.Fee)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\n", p.AccountID, p.StakeNear, fee, p.Uptime)
	}
	return w.Flush()
}
