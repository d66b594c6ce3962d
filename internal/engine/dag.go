package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/shaiso/Mentor/internal/domain"
)

// NodeDef — статическое описание узла графа.
type NodeDef struct {
	// ID — идентификатор узла.
	ID domain.NodeID

	// DependsOn — структурные зависимости: узел стартует только после них.
	DependsOn []domain.NodeID

	// Advises — узлы, которым этот узел передаёт совещательный контекст.
	// Такие рёбра не блокируют выполнение и не участвуют в сортировке.
	Advises []domain.NodeID

	// Timeout — потолок времени выполнения обработчика.
	Timeout time.Duration

	// IsJoin — виртуальный узел без обработчика.
	IsJoin bool
}

// Node — узел в DAG.
type Node struct {
	// Def — определение узла.
	Def *NodeDef

	// ID — идентификатор узла.
	ID domain.NodeID

	// InDegree — количество входящих структурных рёбер.
	InDegree int

	// DependsOn — узлы, от которых зависит этот узел.
	DependsOn []*Node

	// Dependents — узлы, которые зависят от этого узла.
	Dependents []*Node

	// AdvisedBy — узлы, дающие совещательный контекст этому узлу.
	AdvisedBy []*Node

	// IsJoin — true для терминального aggregate.
	IsJoin bool
}

// DAG — направленный ациклический граф обработчиков.
type DAG struct {
	// Nodes — все узлы графа.
	Nodes map[domain.NodeID]*Node

	// RootNodes — узлы без зависимостей (точки входа).
	RootNodes []*Node

	// Order — топологически отсортированный список узлов.
	Order []*Node

	position map[domain.NodeID]int
}

// BuildDAG строит DAG из набора определений.
//
// Проверяет пустые и повторяющиеся ID, ссылки на неизвестные узлы,
// зависимость на себя и циклы.
func BuildDAG(defs []NodeDef) (*DAG, error) {
	if len(defs) == 0 {
		return nil, ErrEmptyGraph
	}

	dag := &DAG{
		Nodes:     make(map[domain.NodeID]*Node, len(defs)),
		RootNodes: make([]*Node, 0),
	}

	// Первый проход: создаём все узлы
	for i := range defs {
		if err := dag.addNode(&defs[i]); err != nil {
			return nil, err
		}
	}

	// Второй проход: связываем узлы по зависимостям
	for i := range defs {
		if err := dag.linkDependencies(&defs[i]); err != nil {
			return nil, err
		}
	}

	dag.findRootNodes(defs)

	order, err := dag.topologicalSort()
	if err != nil {
		return nil, err
	}
	dag.Order = order

	dag.position = make(map[domain.NodeID]int, len(order))
	for i, node := range order {
		dag.position[node.ID] = i
	}

	return dag, nil
}

// addNode добавляет узел в DAG.
func (d *DAG) addNode(def *NodeDef) error {
	if def.ID == "" {
		return NewValidationError("", "id", "node has empty ID", ErrEmptyNodeID)
	}
	if _, exists := d.Nodes[def.ID]; exists {
		return NewValidationError(def.ID, "id", "duplicate node", ErrDuplicateNodeID)
	}

	d.Nodes[def.ID] = &Node{
		Def:        def,
		ID:         def.ID,
		IsJoin:     def.IsJoin,
		DependsOn:  make([]*Node, 0),
		Dependents: make([]*Node, 0),
		AdvisedBy:  make([]*Node, 0),
	}
	return nil
}

// linkDependencies связывает узлы по зависимостям.
func (d *DAG) linkDependencies(def *NodeDef) error {
	node := d.Nodes[def.ID]

	for _, depID := range def.DependsOn {
		if depID == def.ID {
			return NewValidationError(def.ID, "depends_on", "node depends on itself", ErrSelfDependency)
		}
		depNode, exists := d.Nodes[depID]
		if !exists {
			return NewValidationError(def.ID, "depends_on",
				fmt.Sprintf("depends on unknown node: %s", depID), ErrMissingDependency)
		}
		d.addEdge(depNode, node)
	}

	for _, targetID := range def.Advises {
		target, exists := d.Nodes[targetID]
		if !exists {
			return NewValidationError(def.ID, "advises",
				fmt.Sprintf("advises unknown node: %s", targetID), ErrMissingDependency)
		}
		if target.IsJoin {
			return NewValidationError(def.ID, "advises", "join node cannot be advised", ErrInvalidAdvisory)
		}
		target.AdvisedBy = append(target.AdvisedBy, node)
	}

	return nil
}

// addEdge добавляет ребро между узлами.
// Дополнительно проверяет на дубликаты, чтобы избежать двойного учета InDegree.
func (d *DAG) addEdge(from, to *Node) {
	for _, dep := range to.DependsOn {
		if dep.ID == from.ID {
			return // уже связаны
		}
	}
	from.Dependents = append(from.Dependents, to)
	to.DependsOn = append(to.DependsOn, from)
	to.InDegree++
}

// findRootNodes находит узлы без входящих рёбер в порядке объявления.
func (d *DAG) findRootNodes(defs []NodeDef) {
	d.RootNodes = make([]*Node, 0)
	for i := range defs {
		node := d.Nodes[defs[i].ID]
		if node.InDegree == 0 {
			d.RootNodes = append(d.RootNodes, node)
		}
	}
}

// topologicalSort выполняет топологическую сортировку (алгоритм Кана).
// Возвращает ошибку, если обнаружен цикл.
func (d *DAG) topologicalSort() ([]*Node, error) {
	// Копируем inDegree, чтобы не модифицировать оригинал
	inDegree := make(map[domain.NodeID]int, len(d.Nodes))
	for id, node := range d.Nodes {
		inDegree[id] = node.InDegree
	}

	queue := make([]*Node, len(d.RootNodes))
	copy(queue, d.RootNodes)

	order := make([]*Node, 0, len(d.Nodes))

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		for _, dependent := range node.Dependents {
			inDegree[dependent.ID]--
			if inDegree[dependent.ID] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	// Если не все узлы обработаны — есть цикл
	if len(order) != len(d.Nodes) {
		return nil, ErrCyclicDependency
	}

	return order, nil
}

// GetReadyNodes возвращает узлы, готовые к выполнению, в топологическом порядке.
//
// Узел готов, если:
// - Все его структурные зависимости завершены (в completed)
// - Сам узел ещё не завершён и не в процессе
//
// Join-узел не возвращается: он помечается завершённым, как только
// завершены все его зависимости.
func (d *DAG) GetReadyNodes(completed, running map[domain.NodeID]bool) []*Node {
	if completed == nil {
		completed = make(map[domain.NodeID]bool)
	}
	if running == nil {
		running = make(map[domain.NodeID]bool)
	}

	ready := make([]*Node, 0)

	for _, node := range d.Order {
		if completed[node.ID] || running[node.ID] {
			continue
		}

		if !d.depsCompleted(node, completed) {
			continue
		}

		if node.IsJoin {
			completed[node.ID] = true
			continue
		}

		ready = append(ready, node)
	}

	return ready
}

func (d *DAG) depsCompleted(node *Node, completed map[domain.NodeID]bool) bool {
	for _, dep := range node.DependsOn {
		if !completed[dep.ID] {
			return false
		}
	}
	return true
}

// Waves группирует исполняемые узлы по волнам: узлы одной волны
// не зависят друг от друга и могут выполняться одновременно.
func (d *DAG) Waves() [][]domain.NodeID {
	completed := make(map[domain.NodeID]bool, len(d.Nodes))
	waves := make([][]domain.NodeID, 0)

	for !d.IsComplete(completed) {
		ready := d.GetReadyNodes(completed, nil)
		if len(ready) == 0 {
			continue // оставшиеся join-узлы закрылись внутри GetReadyNodes
		}
		wave := make([]domain.NodeID, 0, len(ready))
		for _, node := range ready {
			wave = append(wave, node.ID)
		}
		for _, id := range wave {
			completed[id] = true
		}
		waves = append(waves, wave)
	}

	return waves
}

// GetNode возвращает узел по ID.
func (d *DAG) GetNode(id domain.NodeID) *Node {
	return d.Nodes[id]
}

// Size возвращает количество узлов в DAG.
func (d *DAG) Size() int {
	return len(d.Nodes)
}

// GetExecutableNodes возвращает исполняемые узлы (не join) в топологическом порядке.
func (d *DAG) GetExecutableNodes() []*Node {
	nodes := make([]*Node, 0, len(d.Order))
	for _, node := range d.Order {
		if !node.IsJoin {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// IsComplete проверяет, все ли узлы завершены.
func (d *DAG) IsComplete(completed map[domain.NodeID]bool) bool {
	for id := range d.Nodes {
		if !completed[id] {
			return false
		}
	}
	return true
}

// SortByOrder сортирует ID узлов по топологическому порядку графа.
func (d *DAG) SortByOrder(ids []domain.NodeID) {
	sort.SliceStable(ids, func(i, j int) bool {
		return d.position[ids[i]] < d.position[ids[j]]
	})
}
