package ooi

// Page is one window of a listing: Items in service order plus the total
// Count of the query. Count is independent of len(Items), in particular for
// count-only probes where Items is empty.
type Page struct {
	Count int       `json:"count"`
	Items []*Object `json:"items"`
}
