package app

import (
	"strings"

	"github.com/Guilhem-Bonnet/akd/internal/domain"
)

// ProviderOf renvoie le premier mot du titre d'un serveur ("Mega 1080p" => "Mega").
// Deux serveurs partageant leur premier mot sont regroupés.
func ProviderOf(title string) string {
	provider, _, _ := strings.Cut(title, " ")
	return provider
}

// GroupByProvider regroupe options par provider, dans l'ordre de première
// apparition; l'ordre d'entrée est conservé dans chaque groupe.
func GroupByProvider[T any](options []T, title func(T) string) domain.ProviderGroups[T] {
	out := make(domain.ProviderGroups[T], 0)
	index := make(map[string]int)
	for _, opt := range options {
		provider := ProviderOf(title(opt))
		i, ok := index[provider]
		if !ok {
			i = len(out)
			index[provider] = i
			out = append(out, domain.ProviderGroup[T]{Provider: provider})
		}
		out[i].Options = append(out[i].Options, opt)
	}
	return out
}

func GroupVideoOptions(options []domain.VideoOption) domain.ProviderGroups[domain.VideoOption] {
	return GroupByProvider(options, func(o domain.VideoOption) string { return o.Title })
}
