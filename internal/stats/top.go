package stats

import (
	"sort"

	"github.com/verte-zerg/tuiread/internal/model"
)

// TopTexts returns the n most practised texts, ties broken by best speed.
func TopTexts(aggs []model.TextAggregate, n int) []model.TextAggregate {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	items := append([]model.TextAggregate(nil), aggs...)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Sessions == items[j].Sessions {
			if items[i].BestWPM == items[j].BestWPM {
				return items[i].TextID < items[j].TextID
			}
			return items[i].BestWPM > items[j].BestWPM
		}
		return items[i].Sessions > items[j].Sessions
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
