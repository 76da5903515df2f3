package verify

import (
	"fmt"
	"strings"

	"github.com/verihealth/claimtrust/internal/core/domain"
)

// MountSearchQueries builds one eutils query per (subject, target)
// synonym pair, pre-formatted for the esearch term parameter: terms
// joined with +, restricted to human studies and title matches.
func MountSearchQueries(elements domain.ClaimElements) []string {
	queries := make([]string, 0, len(elements.Subject)*len(elements.Target))

	for _, subject := range elements.Subject {
		subject = queryTerm(subject)
		if subject == "" {
			continue
		}

		for _, target := range elements.Target {
			target = queryTerm(target)
			if target == "" {
				continue
			}

			queries = append(queries,
				fmt.Sprintf("human[orgn]+AND+%s[title]+AND+%s[title]", subject, target))
		}
	}

	return queries
}

func queryTerm(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "+")
}
