package engine

import (
	"fmt"
	"strings"

	"github.com/shaiso/Mentor/internal/domain"
)

// Policy — именованный набор активных узлов.
type Policy string

const (
	// PolicyPersonalizationFirst — профиль студента, материалы, самочувствие,
	// расписание и мотивация. Без квиза.
	PolicyPersonalizationFirst Policy = "personalization_first"

	// PolicyLearningFocused — материалы и квиз, самочувствие и мотивация.
	// Без расписания и персонализации.
	PolicyLearningFocused Policy = "learning_focused"

	// PolicyComprehensive — все узлы.
	PolicyComprehensive Policy = "comprehensive"
)

var policyNodes = map[Policy][]domain.NodeID{
	PolicyPersonalizationFirst: {
		domain.NodePersonalization,
		domain.NodeLearning,
		domain.NodeWellness,
		domain.NodeSchedule,
		domain.NodeMotivation,
	},
	PolicyLearningFocused: {
		domain.NodeLearning,
		domain.NodeWellness,
		domain.NodeAssessment,
		domain.NodeMotivation,
	},
	PolicyComprehensive: domain.HandlerNodes(),
}

// Policies возвращает все известные политики.
func Policies() []Policy {
	return []Policy{PolicyPersonalizationFirst, PolicyLearningFocused, PolicyComprehensive}
}

// ParsePolicy парсит имя политики. Принимает и историческое comprehensive_study.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "personalization_first":
		return PolicyPersonalizationFirst, nil
	case "learning_focused":
		return PolicyLearningFocused, nil
	case "comprehensive", "comprehensive_study":
		return PolicyComprehensive, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Nodes возвращает узлы политики (без aggregate).
func (p Policy) Nodes() []domain.NodeID {
	nodes := policyNodes[p]
	out := make([]domain.NodeID, len(nodes))
	copy(out, nodes)
	return out
}

// SelectPolicy выбирает политику по результату анализа.
//
//	STUDY_PLANNING + needs_personalization → comprehensive
//	RESOURCE_FINDING, ASSESSMENT           → learning_focused
//	STUDY_PLANNING, GENERAL_HELP           → personalization_first
//	неизвестный intent                     → comprehensive
func SelectPolicy(a domain.Analysis) Policy {
	switch a.Intent {
	case domain.IntentStudyPlanning:
		if a.NeedsPersonalization {
			return PolicyComprehensive
		}
		return PolicyPersonalizationFirst
	case domain.IntentResourceFinding, domain.IntentAssessment:
		return PolicyLearningFocused
	case domain.IntentGeneralHelp:
		return PolicyPersonalizationFirst
	default:
		return PolicyComprehensive
	}
}

// Subgraph — активное подмножество фиксированного графа.
//
// Рёбра не меняются: роутинг только отмечает, какие узлы выполняются.
type Subgraph struct {
	Graph  *DAG
	Policy Policy
	active map[domain.NodeID]bool
}

// Route выбирает политику и строит подграф фиксированного графа.
func Route(a domain.Analysis) *Subgraph {
	sub, _ := RouteWith(StudyGraph(), SelectPolicy(a))
	return sub
}

// RouteWith строит подграф для явно заданной политики.
func RouteWith(graph *DAG, policy Policy) (*Subgraph, error) {
	nodes, ok := policyNodes[policy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}

	active := make(map[domain.NodeID]bool, len(nodes)+1)
	for _, id := range nodes {
		if graph.GetNode(id) == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingDependency, id)
		}
		active[id] = true
	}

	// Терминальный join активен всегда
	for _, node := range graph.Order {
		if node.IsJoin {
			active[node.ID] = true
		}
	}

	return &Subgraph{Graph: graph, Policy: policy, active: active}, nil
}

// IsActive возвращает true, если узел выполняется в этом подграфе.
func (s *Subgraph) IsActive(id domain.NodeID) bool {
	return s.active[id]
}

// ActiveNodes возвращает активные исполняемые узлы в топологическом порядке.
func (s *Subgraph) ActiveNodes() []domain.NodeID {
	out := make([]domain.NodeID, 0, len(s.active))
	for _, node := range s.Graph.GetExecutableNodes() {
		if s.active[node.ID] {
			out = append(out, node.ID)
		}
	}
	return out
}

// InactiveNodes возвращает исполняемые узлы, пропущенные политикой.
func (s *Subgraph) InactiveNodes() []domain.NodeID {
	out := make([]domain.NodeID, 0)
	for _, node := range s.Graph.GetExecutableNodes() {
		if !s.active[node.ID] {
			out = append(out, node.ID)
		}
	}
	return out
}
