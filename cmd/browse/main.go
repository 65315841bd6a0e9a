// Command browse renders one page of a country's investment listings from a running
// listing API and reports the impressions (and an optional click) it produced.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/FaizanHaider108/lookvisa/internal/adapter/httpclient"
	"github.com/FaizanHaider108/lookvisa/internal/listing/domain"
	"github.com/FaizanHaider108/lookvisa/internal/listing/search"
	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"go.uber.org/zap"
)

var (
	apiURL   string
	country  string
	industry string
	sortBy   string
	page     int
	pageSize int
	open     string
	legacy   bool
	timeout  time.Duration
)

func init() {
	flag.StringVar(&apiURL, "api", "http://localhost:8080", "Base URL of the listing API")
	flag.StringVar(&country, "country", "", "Country to browse (required)")
	flag.StringVar(&industry, "industry", "", "Only show listings of this industry")
	flag.StringVar(&sortBy, "sort", "", "investmentAmountAsc, investmentAmountDesc, datePostedAsc or datePostedDesc")
	flag.IntVar(&page, "page", 1, "Page to show")
	flag.IntVar(&pageSize, "page-size", search.DefaultPageSize, "Listings per page")
	flag.StringVar(&open, "open", "", "Listing id to open (records a click)")
	flag.BoolVar(&legacy, "legacy-sort", false, "Use the inverted sort labels of the first release")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP timeout")
}

func main() {
	flag.Parse()
	if country == "" {
		fmt.Fprintln(os.Stderr, "browse: -country is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg := logger.DefaultConfig()
	log := logger.NewLogger(cfg)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log); err != nil {
		log.Error("browse failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	client, err := httpclient.New(apiURL, timeout)
	if err != nil {
		return err
	}

	b := search.NewBrowser(client, client, log, search.WithPageSize(pageSize), search.WithLegacySort(legacy))
	defer b.Wait()

	if err := b.SelectCountry(ctx, country); err != nil {
		return fmt.Errorf("load %s: %w", country, err)
	}
	b.SetIndustry(domain.Industry(industry))
	if err := b.SetSort(search.SortOption(sortBy)); err != nil {
		return err
	}
	b.GoToPage(page)

	render(b.Visible(ctx))

	if open != "" {
		b.Open(ctx, open)
	}
	return nil
}

func render(p search.Page) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Page %d of %d (%d listings)\n\n", p.CurrentPage, p.TotalPages, p.Total)
	fmt.Fprintln(w, "ID\tINDUSTRY\tMIN. INVESTMENT\tPUBLISHED\tCONTACT")
	for _, l := range p.Items {
		published := "-"
		if l.PublishedAt != nil {
			published = l.PublishedAt.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", l.ID, l.InvestmentIndustry, l.MinimumInvestment, published, l.Contact.Email)
	}
}
