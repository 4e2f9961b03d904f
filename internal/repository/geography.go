package repository

import (
	"context"
	"sort"
)

// StaticGeography зашитый справочник локаций для dev-сервера.
// В одном из списков намеренно оставлена пустая строка — реальный бэкенд
// отдаёт и такое, клиент обязан это переживать
type StaticGeography struct {
	data map[string]map[string][]string
}

func NewStaticGeography() *StaticGeography {
	return &StaticGeography{
		data: map[string]map[string][]string{
			"Sri Lanka": {
				"Colombo District": {"Colombo", "Sri Jayawardenepura Kotte", "Dehiwala-Mount Lavinia"},
				"Kandy District":   {"Kandy", "", "Gampola"},
				"Galle District":   {"Galle", "Hikkaduwa"},
			},
			"India": {
				"Kerala":     {"Kochi", "Thiruvananthapuram"},
				"Tamil Nadu": {"Chennai", "Coimbatore"},
			},
			"United States": {
				"California": {"Los Angeles", "San Francisco"},
				"New York":   {"New York City", "Buffalo"},
			},
		},
	}
}

var _ GeographyRepository = (*StaticGeography)(nil)

func (g *StaticGeography) Countries(ctx context.Context) ([]string, error) {
	out := make([]string, 0, len(g.data))
	// stable order for predictable responses
	for _, c := range []string{"Sri Lanka", "India", "United States"} {
		if _, ok := g.data[c]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (g *StaticGeography) States(ctx context.Context, country string) ([]string, error) {
	states, ok := g.data[country]
	if !ok {
		return []string{}, nil
	}
	out := make([]string, 0, len(states))
	for s := range states {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

func (g *StaticGeography) Cities(ctx context.Context, country, state string) ([]string, error) {
	states, ok := g.data[country]
	if !ok {
		return []string{}, nil
	}
	cities, ok := states[state]
	if !ok {
		return []string{}, nil
	}
	return append([]string(nil), cities...), nil
}
