package report

const maxStatCards = 4

// StatCard is one rendered summary metric.
type StatCard struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Value string     `json:"value"`
	Kind  MetricKind `json:"kind"`
}

// Cards maps a stats record onto at most four display cards. It formats only.
func Cards(s StatsRecord) []StatCard {
	n := len(s.Metrics)
	if n > maxStatCards {
		n = maxStatCards
	}
	cards := make([]StatCard, 0, n)
	for _, m := range s.Metrics[:n] {
		cards = append(cards, StatCard{
			Key:   m.Key,
			Label: m.Label,
			Value: FormatMetric(m),
			Kind:  m.Kind,
		})
	}
	return cards
}
