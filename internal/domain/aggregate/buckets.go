package aggregate

import "math"

// Bucket is a closed rating range ending at Max.
type Bucket struct {
	Label string
	Max   int
}

var buckets = []Bucket{ //nolint:gochecknoglobals // fixed partition
	{Label: "≤800", Max: 800},
	{Label: "801–1000", Max: 1000},
	{Label: "1001–1200", Max: 1200},
	{Label: "1201–1400", Max: 1400},
	{Label: "1401–1600", Max: 1600},
	{Label: "1601–1900", Max: 1900},
	{Label: "1901+", Max: math.MaxInt},
}

// Buckets returns the ordered rating partition.
func Buckets() []Bucket {
	out := make([]Bucket, len(buckets))
	copy(out, buckets)
	return out
}

// BucketIndex returns the position of the bucket holding rating.
func BucketIndex(rating int) int {
	for i, b := range buckets {
		if rating <= b.Max {
			return i
		}
	}
	return len(buckets) - 1
}

// BucketLabel returns the label of the bucket holding rating.
func BucketLabel(rating int) string {
	return buckets[BucketIndex(rating)].Label
}

// BucketCount is the number of solved problems in one bucket.
type BucketCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

func emptyBucketCounts() []BucketCount {
	out := make([]BucketCount, len(buckets))
	for i, b := range buckets {
		out[i] = BucketCount{Label: b.Label}
	}
	return out
}
