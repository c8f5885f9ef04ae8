package cli

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kiwari-pos/backoffice/internal/logger"
	"github.com/kiwari-pos/backoffice/internal/pager"
)

type resource struct {
	path   string
	branch bool
}

// resources are the list endpoints boctl can page through. Branch-scoped
// paths are relative to /branches/{bid}.
var resources = map[string]resource{
	"branches":          {path: "/branches"},
	"pages":             {path: "/pages"},
	"users":             {path: "/users", branch: true},
	"categories":        {path: "/categories", branch: true},
	"menu-items":        {path: "/menu-items", branch: true},
	"orders":            {path: "/orders", branch: true},
	"inventory":         {path: "/inventory", branch: true},
	"purchase-orders":   {path: "/purchase-orders", branch: true},
	"goods-receipts":    {path: "/goods-receipts", branch: true},
	"stock-adjustments": {path: "/stock/adjustments", branch: true},
	"stock-variance":    {path: "/reports/stock-variance", branch: true},
	"kds-profiles":      {path: "/kds-profiles", branch: true},
	"deals":             {path: "/deals", branch: true},
}

func resourceNames() []string {
	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lastFailure keeps the most recent fetch error, which the controller itself
// only logs.
type lastFailure struct {
	err error
}

func (f *lastFailure) PageLoaded(string, int, int, time.Duration) {}

func (f *lastFailure) PageFailed(_ string, _ int, err error) {
	f.err = err
}

func parseFilters(raw []string) (url.Values, error) {
	q := url.Values{}
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid filter %q, want key=value", kv)
		}
		q.Add(k, v)
	}
	return q, nil
}

func newListCmd() *cobra.Command {
	var (
		pageSize int
		pages    int
		all      bool
		filters  []string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:       "list <resource>",
		Short:     "Page through a list endpoint, printing one JSON row per line",
		Long:      "Resources: " + strings.Join(resourceNames(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: resourceNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			name := args[0]
			res, ok := resources[name]
			if !ok {
				return fmt.Errorf("unknown resource %q (want one of %s)", name, strings.Join(resourceNames(), ", "))
			}
			if a.cfg.Token == "" {
				return errors.New("not logged in: run boctl login or pass --token")
			}
			path := res.path
			if res.branch {
				if a.cfg.BranchID == "" {
					return errors.New("no branch: pass --branch or log in first")
				}
				path = "/branches/" + a.cfg.BranchID + path
			}
			query, err := parseFilters(filters)
			if err != nil {
				return err
			}

			failure := &lastFailure{}
			ctrl := pager.New(nil, pageSize, a.client().Fetcher(path, query, timeout),
				pager.WithName(name),
				pager.WithObserver(failure),
				pager.WithLogger(logger.New("text", "error", cmd.ErrOrStderr())),
			)
			defer ctrl.Close()

			out := cmd.OutOrStdout()
			for loaded := 0; all || loaded < pages; loaded++ {
				before := ctrl.Len()
				if !ctrl.LoadMore(cmd.Context()) {
					break
				}
				for _, row := range ctrl.RowsFrom(before) {
					fmt.Fprintln(out, string(row))
				}
			}
			if failure.err != nil {
				return fmt.Errorf("list %s: %w", name, failure.err)
			}

			st := ctrl.State()
			summary := fmt.Sprintf("%d rows", st.Len)
			if st.HasNextPage {
				summary += ", more available (use --pages or --all)"
			}
			fmt.Fprintln(cmd.ErrOrStderr(), summary)
			return nil
		},
	}

	cmd.Flags().IntVar(&pageSize, "page-size", pager.DefaultPageSize, "Rows per page")
	cmd.Flags().IntVar(&pages, "pages", 1, "Number of pages to load")
	cmd.Flags().BoolVar(&all, "all", false, "Load every page")
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "Query filter key=value (repeatable)")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "Timeout per page request")
	return cmd
}
