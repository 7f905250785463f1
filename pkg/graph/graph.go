package graph

// Diagram is the mutable store of nodes and edges the editor operates on.
// It is confined to the event thread, so no locking is needed; lookups hand
// out references and mutation happens in place.
type Diagram struct {
	nodes map[string]*Node
	edges map[string]*Edge

	// Insertion order, preserved so rendering and listings are stable.
	nodeOrder []string
	edgeOrder []string
}

// New creates an empty diagram.
func New() *Diagram {
	return &Diagram{
		nodes: make(map[string]*Node),
		edges: make(map[string]*Edge),
	}
}

// AddNode inserts a node. An existing node with the same ID is replaced in
// place without disturbing insertion order.
func (d *Diagram) AddNode(n *Node) {
	if _, exists := d.nodes[n.ID]; !exists {
		d.nodeOrder = append(d.nodeOrder, n.ID)
	}
	d.nodes[n.ID] = n
}

// AddEdge inserts an edge.
func (d *Diagram) AddEdge(e *Edge) {
	if _, exists := d.edges[e.ID]; !exists {
		d.edgeOrder = append(d.edgeOrder, e.ID)
	}
	d.edges[e.ID] = e
}

// Node returns the node with the given ID, or nil.
func (d *Diagram) Node(id string) *Node {
	return d.nodes[id]
}

// Edge returns the edge with the given ID, or nil.
func (d *Diagram) Edge(id string) *Edge {
	return d.edges[id]
}

// Nodes returns all nodes in insertion order.
func (d *Diagram) Nodes() []*Node {
	out := make([]*Node, 0, len(d.nodeOrder))
	for _, id := range d.nodeOrder {
		if n := d.nodes[id]; n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Edges returns all edges in insertion order.
func (d *Diagram) Edges() []*Edge {
	out := make([]*Edge, 0, len(d.edgeOrder))
	for _, id := range d.edgeOrder {
		if e := d.edges[id]; e != nil {
			out = append(out, e)
		}
	}
	return out
}

// NodeCount returns the number of nodes.
func (d *Diagram) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges.
func (d *Diagram) EdgeCount() int { return len(d.edges) }

// RemoveEdge deletes an edge by ID. Unknown IDs are a no-op.
func (d *Diagram) RemoveEdge(id string) {
	if _, ok := d.edges[id]; !ok {
		return
	}
	delete(d.edges, id)
	d.edgeOrder = removeID(d.edgeOrder, id)
}

// RemoveNode deletes a node and every edge incident to it.
func (d *Diagram) RemoveNode(id string) {
	if _, ok := d.nodes[id]; !ok {
		return
	}
	delete(d.nodes, id)
	d.nodeOrder = removeID(d.nodeOrder, id)

	for _, e := range d.Edges() {
		if e.SourceID == id || e.TargetID == id {
			d.RemoveEdge(e.ID)
		}
	}
}

// EdgesBetween returns edges connecting a and b in either direction.
func (d *Diagram) EdgesBetween(a, b string) []*Edge {
	var out []*Edge
	for _, e := range d.Edges() {
		if (e.SourceID == a && e.TargetID == b) || (e.SourceID == b && e.TargetID == a) {
			out = append(out, e)
		}
	}
	return out
}

// IncidentEdges returns all edges touching the given node.
func (d *Diagram) IncidentEdges(nodeID string) []*Edge {
	var out []*Edge
	for _, e := range d.Edges() {
		if e.SourceID == nodeID || e.TargetID == nodeID {
			out = append(out, e)
		}
	}
	return out
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
