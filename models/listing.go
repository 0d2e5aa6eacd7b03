package models

import "time"

// RoomType is one of the four room categories Inside Airbnb publishes.
type RoomType string

const (
	RoomPrivate    RoomType = "Private room"
	RoomEntireHome RoomType = "Entire home/apt"
	RoomShared     RoomType = "Shared room"
	RoomHotel      RoomType = "Hotel room"
)

// AllRoomTypes lists the room types in the order the dashboard offers them.
var AllRoomTypes = []RoomType{RoomPrivate, RoomEntireHome, RoomShared, RoomHotel}

// RawListing holds one row exactly as it was read from a dataset source.
// Every field is the untrimmed cell text; empty means the cell was blank.
type RawListing struct {
	Line                        int
	ID                          string
	HostID                      string
	Name                        string
	HostName                    string
	Neighbourhood               string
	Latitude                    string
	Longitude                   string
	RoomType                    string
	Price                       string
	MinimumNights               string
	NumberOfReviews             string
	LastReview                  string
	ReviewsPerMonth             string
	CalculatedHostListingsCount string
	Availability365             string
	NumberOfReviewsLTM          string
	License                     string
}

// Listing is the typed, read-only record the dashboard works on.
// Price, ReviewsPerMonth and LastReview are nil when the source cell was empty.
type Listing struct {
	ID                          int64      `json:"id"`
	HostID                      int64      `json:"host_id"`
	Name                        string     `json:"name"`
	HostName                    string     `json:"host_name,omitempty"`
	Neighbourhood               string     `json:"neighbourhood"`
	Latitude                    float64    `json:"latitude"`
	Longitude                   float64    `json:"longitude"`
	RoomType                    RoomType   `json:"room_type"`
	Price                       *float64   `json:"price"`
	MinimumNights               int        `json:"minimum_nights"`
	NumberOfReviews             int        `json:"number_of_reviews"`
	LastReview                  *time.Time `json:"last_review"`
	ReviewsPerMonth             *float64   `json:"reviews_per_month"`
	CalculatedHostListingsCount int        `json:"calculated_host_listings_count"`
	Availability365             int        `json:"availability_365"`
	NumberOfReviewsLTM          int        `json:"number_of_reviews_ltm"`
	License                     string     `json:"license"`
}

// HasPrice reports whether the listing carries a price.
func (l *Listing) HasPrice() bool {
	return l.Price != nil
}

// Table is an ordered set of listings. Operations on a Table build a new
// slice and never modify the listings it points to.
type Table []*Listing

// Len returns the number of rows.
func (t Table) Len() int { return len(t) }

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t) == 0 }
