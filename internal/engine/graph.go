package engine

import (
	"time"

	"github.com/shaiso/Mentor/internal/domain"
)

// Потолки времени выполнения обработчиков. Не настраиваются на уровне вызова.
const (
	LearningTimeout        = 20 * time.Second
	AssessmentTimeout      = 20 * time.Second
	WellnessTimeout        = 10 * time.Second
	ScheduleTimeout        = 10 * time.Second
	PersonalizationTimeout = 10 * time.Second
	MotivationTimeout      = 8 * time.Second
)

// StudyNodes возвращает определения фиксированного графа.
//
//	personalization ··> learning, schedule   (совещательно)
//	learning ──> assessment
//	learning, wellness ──> schedule
//	wellness, schedule ──> motivation
//	все ──> aggregate
func StudyNodes() []NodeDef {
	return []NodeDef{
		{
			ID:      domain.NodePersonalization,
			Advises: []domain.NodeID{domain.NodeLearning, domain.NodeSchedule},
			Timeout: PersonalizationTimeout,
		},
		{
			ID:      domain.NodeLearning,
			Timeout: LearningTimeout,
		},
		{
			ID:      domain.NodeWellness,
			Timeout: WellnessTimeout,
		},
		{
			ID:        domain.NodeAssessment,
			DependsOn: []domain.NodeID{domain.NodeLearning},
			Timeout:   AssessmentTimeout,
		},
		{
			ID:        domain.NodeSchedule,
			DependsOn: []domain.NodeID{domain.NodeLearning, domain.NodeWellness},
			Timeout:   ScheduleTimeout,
		},
		{
			ID:        domain.NodeMotivation,
			DependsOn: []domain.NodeID{domain.NodeWellness, domain.NodeSchedule},
			Timeout:   MotivationTimeout,
		},
		{
			ID:     domain.NodeAggregate,
			IsJoin: true,
			DependsOn: []domain.NodeID{
				domain.NodePersonalization,
				domain.NodeLearning,
				domain.NodeWellness,
				domain.NodeAssessment,
				domain.NodeSchedule,
				domain.NodeMotivation,
			},
		},
	}
}

var studyGraph = mustBuild(StudyNodes())

// StudyGraph возвращает фиксированный граф обработчиков.
// Граф неизменяем и разделяется между запросами.
func StudyGraph() *DAG {
	return studyGraph
}

// NodeTimeout возвращает потолок времени узла фиксированного графа.
func NodeTimeout(id domain.NodeID) time.Duration {
	if node := studyGraph.GetNode(id); node != nil {
		return node.Def.Timeout
	}
	return 0
}

func mustBuild(defs []NodeDef) *DAG {
	dag, err := BuildDAG(defs)
	if err != nil {
		panic("engine: invalid static graph: " + err.Error())
	}
	return dag
}
