package cmd

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
)

func bindFlag(key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// controlsFlags holds the dashboard selections a command accepts.
type controlsFlags struct {
	extended      bool
	priceRange    string
	neighbourhood string
	roomType      string
	sortByPrice   bool
}

func (c *controlsFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&c.extended, "extended", false, "use the extended price schedule (brackets up to $5000)")
	f.StringVar(&c.priceRange, "range", "", "price bracket label, e.g. 100-150 (default: first bracket)")
	f.StringVar(&c.neighbourhood, "neighbourhood", "", "neighbourhood name (default: first in the dataset)")
	f.StringVar(&c.roomType, "room-type", "", "room type (default: Private room, or the first one in the dataset)")
	f.BoolVar(&c.sortByPrice, "sort", false, "sort the price bracket table by price")
}

func (c *controlsFlags) controls() services.Controls {
	return services.Controls{
		Extended:      c.extended,
		PriceRange:    c.priceRange,
		Neighbourhood: c.neighbourhood,
		RoomType:      models.RoomType(c.roomType),
		Zoom:          cfg.DefaultZoom,
		Radius:        cfg.DefaultRadius,
		SortByPrice:   c.sortByPrice,
	}
}

// queryFor encodes c as dashboard query parameters.
func queryFor(c services.Controls) string {
	q := url.Values{}
	q.Set("extended", strconv.FormatBool(c.Extended))
	q.Set("range", c.PriceRange)
	q.Set("neighbourhood", c.Neighbourhood)
	q.Set("room_type", string(c.RoomType))
	q.Set("zoom", strconv.FormatFloat(c.Zoom, 'f', -1, 64))
	q.Set("radius", strconv.FormatFloat(c.Radius, 'f', -1, 64))
	q.Set("sort", strconv.FormatBool(c.SortByPrice))
	return q.Encode()
}
