package weather

import (
	"fmt"
	"strings"
)

const (
	highlightSeparator = "｜"
	cityJoiner         = "、"
	noHighlight        = "（今日重點：資料不足）"
)

// Hottest returns the record with the highest MaxTemp. The first record wins a tie.
func Hottest(records []Record) (Record, bool) {
	var (
		best  Record
		found bool
	)
	for _, r := range records {
		if r.MaxTemp == nil {
			continue
		}
		if !found || *r.MaxTemp > *best.MaxTemp {
			best, found = r, true
		}
	}
	return best, found
}

// Coldest returns the record with the lowest MinTemp. The first record wins a tie.
func Coldest(records []Record) (Record, bool) {
	var (
		best  Record
		found bool
	)
	for _, r := range records {
		if r.MinTemp == nil {
			continue
		}
		if !found || *r.MinTemp < *best.MinTemp {
			best, found = r, true
		}
	}
	return best, found
}

// Wettest returns every city sharing the highest PoP, in record order.
func Wettest(records []Record) ([]string, int, bool) {
	top, found := 0, false
	for _, r := range records {
		if r.PoP == nil {
			continue
		}
		if !found || *r.PoP > top {
			top, found = *r.PoP, true
		}
	}
	if !found {
		return nil, 0, false
	}

	var cities []string
	for _, r := range records {
		if r.PoP != nil && *r.PoP == top {
			cities = append(cities, r.City)
		}
	}
	return cities, top, true
}

// Highlight summarizes the hottest, coldest and wettest cities of a batch,
// in that order. Records with a missing field are skipped for that reduction.
func Highlight(records []Record) string {
	var parts []string

	if r, ok := Hottest(records); ok {
		parts = append(parts, fmt.Sprintf("🔥 最高溫：%s %d°C", r.City, *r.MaxTemp))
	}
	if r, ok := Coldest(records); ok {
		parts = append(parts, fmt.Sprintf("🧊 最低溫：%s %d°C", r.City, *r.MinTemp))
	}
	if cities, pop, ok := Wettest(records); ok {
		parts = append(parts, fmt.Sprintf("☔ 降雨最高：%s %d%%", strings.Join(cities, cityJoiner), pop))
	}

	if len(parts) == 0 {
		return noHighlight
	}
	return strings.Join(parts, highlightSeparator)
}

// TimeRange formats the first record's forecast period.
func TimeRange(records []Record) string {
	if len(records) == 0 || records[0].Start == "" || records[0].End == "" {
		return "（今日時段）"
	}
	return records[0].Start + " ~ " + records[0].End
}
