package match

import (
	"sort"
	"strings"

	"fixmate/api/internal/store"
)

// Canonical field roles and their fixed weights. Identity fields dominate,
// problem/solution text counts less, auxiliary metadata least.
const (
	roleName     = "name"
	roleProblem  = "problem"
	roleSolution = "solution"
	roleAux      = "aux"
)

var roleWeights = map[string]float64{
	roleName:     3,
	roleProblem:  2,
	roleSolution: 2,
	roleAux:      1.5,
}

// tableAliases maps each reference table's historical column names onto the
// canonical roles. Different tables never agreed on naming; this is the one
// place that knows about it.
var tableAliases = map[string]map[string][]string{
	"devices": {
		roleName:     {"device", "model"},
		roleProblem:  {"problem"},
		roleSolution: {"solution"},
		roleAux:      {"brand", "notes"},
	},
	"instruments": {
		roleName:     {"name"},
		roleProblem:  {"diagnosis"},
		roleSolution: {"fix"},
		roleAux:      {"manufacturer", "remarks"},
	},
	"components": {
		roleName:     {"component"},
		roleProblem:  {"issue"},
		roleSolution: {"repair"},
		roleAux:      {"package_type"},
	},
	"pcb_boards": {
		roleName:     {"board_name"},
		roleProblem:  {"fault"},
		roleSolution: {"rework"},
		roleAux:      {"layer_info"},
	},
}

// columnWeights is tableAliases resolved once at load: table -> source
// column -> weight.
var columnWeights = func() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(tableAliases))
	for table, roles := range tableAliases {
		cols := make(map[string]float64)
		for role, aliases := range roles {
			for _, col := range aliases {
				cols[col] = roleWeights[role]
			}
		}
		out[table] = cols
	}
	return out
}()

// Tables lists the categories the matcher knows about.
func Tables() []string {
	out := make([]string, 0, len(tableAliases))
	for t := range tableAliases {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func KnownTable(table string) bool {
	_, ok := tableAliases[table]
	return ok
}

type Match struct {
	Record        map[string]string `json:"record"`
	Confidence    float64           `json:"confidence"`
	MatchedFields []string          `json:"matchedFields"`
}

// Score ranks reference rows against extracted keywords by plain lowercase
// substring containment. No fuzzy matching or stemming: exactness keeps the
// matcher cheap and predictable.
func Score(table string, rows []store.ReferenceRow, terms []string) []Match {
	weights, ok := columnWeights[table]
	if !ok {
		return nil
	}

	lowered := make([]string, 0, len(terms))
	for _, t := range terms {
		if s := strings.ToLower(strings.TrimSpace(t)); s != "" {
			lowered = append(lowered, s)
		}
	}
	if len(lowered) == 0 {
		return nil
	}

	var out []Match
	for _, row := range rows {
		var (
			score   float64
			matched []string
			seen    = map[string]bool{}
		)
		for col, w := range weights {
			val := strings.ToLower(row.Fields[col])
			if val == "" {
				continue
			}
			for _, term := range lowered {
				if strings.Contains(val, term) {
					score += w
					if !seen[col] {
						seen[col] = true
						matched = append(matched, col)
					}
				}
			}
		}
		if score <= 0 {
			continue
		}
		conf := score / 10
		if conf > 1 {
			conf = 1
		}
		sort.Strings(matched)
		out = append(out, Match{Record: row.Fields, Confidence: conf, MatchedFields: matched})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}
