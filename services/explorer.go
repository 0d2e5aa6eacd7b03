package services

import (
	"sort"

	"airbnb-dashboard/models"
)

// Direction orders TopK results.
type Direction int

const (
	Descending Direction = iota
	Ascending
)

// FilterByBracket keeps the rows whose price falls in the bracket named by
// label. A label the schedule does not offer is rejected; a valid label that
// matches nothing yields an empty table.
func FilterByBracket(t models.Table, label string, s Schedule) (models.Table, error) {
	if !s.HasLabel(label) {
		return nil, &models.InvalidCategoryError{Field: "price range", Value: label}
	}
	return filter(t, func(l *models.Listing) bool {
		got, ok := Bucket(l.Price, s)
		return ok && got == label
	}), nil
}

// FilterByNeighbourhood keeps the rows in the named neighbourhood, which must
// appear somewhere in t.
func FilterByNeighbourhood(t models.Table, name string) (models.Table, error) {
	if !contains(Neighbourhoods(t), name) {
		return nil, &models.InvalidCategoryError{Field: "neighbourhood", Value: name}
	}
	return filter(t, func(l *models.Listing) bool { return l.Neighbourhood == name }), nil
}

// FilterByRoomType keeps the rows of the given room type, which must appear
// somewhere in t.
func FilterByRoomType(t models.Table, rt models.RoomType) (models.Table, error) {
	if !hasRoomType(RoomTypes(t), rt) {
		return nil, &models.InvalidCategoryError{Field: "room type", Value: string(rt)}
	}
	return filter(t, func(l *models.Listing) bool { return l.RoomType == rt }), nil
}

// TopK returns up to k priced rows ordered by price. Ties keep their
// original order. Rows without a price are skipped.
func TopK(t models.Table, k int, dir Direction) models.Table {
	if k <= 0 {
		return models.Table{}
	}
	sorted := SortByPrice(t, dir)
	if len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}

// SortByPrice returns the priced rows of t ordered by price, stable on ties.
func SortByPrice(t models.Table, dir Direction) models.Table {
	priced := filter(t, (*models.Listing).HasPrice)
	sort.SliceStable(priced, func(i, j int) bool {
		if dir == Ascending {
			return *priced[i].Price < *priced[j].Price
		}
		return *priced[i].Price > *priced[j].Price
	})
	return priced
}

// AverageByGroup returns the mean price per neighbourhood. Rows without a
// price are ignored, and a neighbourhood with no priced rows is left out.
func AverageByGroup(t models.Table) map[string]float64 {
	type acc struct {
		sum   float64
		count int
	}
	groups := make(map[string]*acc)
	for _, l := range t {
		if l.Price == nil {
			continue
		}
		a, ok := groups[l.Neighbourhood]
		if !ok {
			a = &acc{}
			groups[l.Neighbourhood] = a
		}
		a.sum += *l.Price
		a.count++
	}

	result := make(map[string]float64, len(groups))
	for name, a := range groups {
		result[name] = a.sum / float64(a.count)
	}
	return result
}

// Centroid returns the mean latitude and longitude of t.
func Centroid(t models.Table) (lat, lon float64, err error) {
	if t.Empty() {
		return 0, 0, &models.EmptyViewError{View: "map"}
	}
	for _, l := range t {
		lat += l.Latitude
		lon += l.Longitude
	}
	n := float64(len(t))
	return lat / n, lon / n, nil
}

// Neighbourhoods lists the distinct neighbourhoods of t in first-seen order.
func Neighbourhoods(t models.Table) []string {
	seen := make(map[string]struct{})
	var result []string
	for _, l := range t {
		if _, ok := seen[l.Neighbourhood]; ok {
			continue
		}
		seen[l.Neighbourhood] = struct{}{}
		result = append(result, l.Neighbourhood)
	}
	return result
}

// RoomTypes lists the distinct room types of t in first-seen order.
func RoomTypes(t models.Table) []models.RoomType {
	seen := make(map[models.RoomType]struct{})
	var result []models.RoomType
	for _, l := range t {
		if _, ok := seen[l.RoomType]; ok {
			continue
		}
		seen[l.RoomType] = struct{}{}
		result = append(result, l.RoomType)
	}
	return result
}

// RoomTypeCount is one slice of the room type pie.
type RoomTypeCount struct {
	RoomType models.RoomType
	Count    int
}

// RoomTypeCounts counts rows per room type, largest first. Equal counts keep
// the order in which the room type first appears.
func RoomTypeCounts(t models.Table) []RoomTypeCount {
	index := make(map[models.RoomType]int)
	var counts []RoomTypeCount
	for _, l := range t {
		i, ok := index[l.RoomType]
		if !ok {
			i = len(counts)
			index[l.RoomType] = i
			counts = append(counts, RoomTypeCount{RoomType: l.RoomType})
		}
		counts[i].Count++
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts
}

// ScatterPoint pairs a listing's review rate with its price.
type ScatterPoint struct {
	ReviewsPerMonth float64 `json:"x"`
	Price           float64 `json:"y"`
}

// ScatterSeries returns one point per row that has both a price and a
// reviews-per-month value. Nothing is clipped to the chart viewport.
func ScatterSeries(t models.Table) []ScatterPoint {
	points := make([]ScatterPoint, 0, len(t))
	for _, l := range t {
		if l.Price == nil || l.ReviewsPerMonth == nil {
			continue
		}
		points = append(points, ScatterPoint{ReviewsPerMonth: *l.ReviewsPerMonth, Price: *l.Price})
	}
	return points
}

func filter(t models.Table, keep func(*models.Listing) bool) models.Table {
	out := make(models.Table, 0)
	for _, l := range t {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

func hasRoomType(types []models.RoomType, rt models.RoomType) bool {
	for _, k := range types {
		if k == rt {
			return true
		}
	}
	return false
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
