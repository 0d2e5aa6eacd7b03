package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(table models.Table) *models.Overview {
	report := &models.Overview{
		ListingsByRoomType: make(map[models.RoomType]int),
	}

	if table.Empty() {
		return report
	}

	report.TotalListings = len(table)
	report.Neighbourhoods = len(Neighbourhoods(table))
	for _, rc := range RoomTypeCounts(table) {
		report.ListingsByRoomType[rc.RoomType] = rc.Count
	}

	priced := SortByPrice(table, Descending)
	report.PricedListings = len(priced)
	if len(priced) > 0 {
		var total float64
		for _, l := range priced {
			total += *l.Price
		}
		report.MostExpensive = priced[0]
		report.Cheapest = priced[len(priced)-1]
		report.MaxPrice = round2(*report.MostExpensive.Price)
		report.MinPrice = round2(*report.Cheapest.Price)
		report.AveragePrice = round2(total / float64(len(priced)))
	}

	s.logger.Debug("[insights] %d listings, %d priced, %d neighbourhoods",
		report.TotalListings, report.PricedListings, report.Neighbourhoods)
	return report
}

func (s *InsightService) Print(w io.Writer, r *models.Overview, averages []GroupAverage) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  🏠 AIRBNB LISTINGS OVERVIEW\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Total listings    : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  Priced listings   : \033[1m%d\033[0m\n", r.PricedListings)
	fmt.Fprintf(w, "  Neighbourhoods    : \033[1m%d\033[0m\n", r.Neighbourhoods)
	fmt.Fprintln(w)

	// Price Stats
	fmt.Fprintf(w, "\033[1;33m  Price Statistics (per night)\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.PricedListings > 0 {
		fmt.Fprintf(w, "  Average price : \033[1;32m$%.2f\033[0m\n", r.AveragePrice)
		fmt.Fprintf(w, "  Minimum price : \033[1;32m$%.2f\033[0m\n", r.MinPrice)
		fmt.Fprintf(w, "  Maximum price : \033[1;32m$%.2f\033[0m\n", r.MaxPrice)
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	if r.MostExpensive != nil {
		fmt.Fprintf(w, "\033[1;33m  Most Expensive Listing\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s\n", truncate(r.MostExpensive.Name, 50))
		fmt.Fprintf(w, "  Neighbourhood : %s\n", r.MostExpensive.Neighbourhood)
		fmt.Fprintf(w, "  Price         : \033[1;31m$%.2f/night\033[0m\n", *r.MostExpensive.Price)
		fmt.Fprintln(w)
	}

	// ── LISTINGS BY ROOM TYPE ────────────────────────────────────────────
	fmt.Fprintf(w, "\033[1;33m  Listings by Room Type\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.ListingsByRoomType) == 0 {
		fmt.Fprintf(w, "  No room type data\n")
	} else {
		type rtCount struct {
			rt    models.RoomType
			count int
		}
		var rts []rtCount
		for rt, cnt := range r.ListingsByRoomType {
			rts = append(rts, rtCount{rt, cnt})
		}
		sort.Slice(rts, func(i, j int) bool {
			if rts[i].count != rts[j].count {
				return rts[i].count > rts[j].count
			}
			return rts[i].rt < rts[j].rt
		})
		for _, rc := range rts {
			pct := float64(rc.count) * 100 / float64(r.TotalListings)
			fmt.Fprintf(w, "  %-18s %6d  (%.1f%%)\n", rc.rt, rc.count, pct)
		}
	}
	fmt.Fprintln(w)

	// Average price by neighbourhood, most expensive first
	fmt.Fprintf(w, "\033[1;33m  Average Price by Neighbourhood\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(averages) == 0 {
		fmt.Fprintf(w, "  No neighbourhood data\n")
	} else {
		sorted := append([]GroupAverage(nil), averages...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].AveragePrice > sorted[j].AveragePrice
		})
		top := sorted[0].AveragePrice
		for _, a := range sorted {
			n := 0
			if top > 0 {
				n = max(0, min(20, int(a.AveragePrice/top*20)))
			}
			bar := strings.Repeat("█", n)
			fmt.Fprintf(w, "  %-28s %-20s $%.2f\n", truncate(a.Neighbourhood, 26), bar, a.AveragePrice)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

// truncate shortens s to at most max runes, marking the cut with "...".
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
