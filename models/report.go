package models

// Overview holds the headline statistics of a loaded dataset.
type Overview struct {
	TotalListings      int
	PricedListings     int
	AveragePrice       float64
	MinPrice           float64
	MaxPrice           float64
	MostExpensive      *Listing
	Cheapest           *Listing
	Neighbourhoods     int
	ListingsByRoomType map[RoomType]int
}
