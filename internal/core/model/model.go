package model

// VertexRow is one tabular vertex record: one row per vertex per snapshot.
type VertexRow struct {
	Vertex   string  `json:"vertex"`
	Weight   float64 `json:"weight"`
	Snapshot string  `json:"snapshot"`
}

// EdgeRow is one directed edge record. Both endpoints must exist as
// vertices in the same snapshot.
type EdgeRow struct {
	VertexFrom string `json:"vertex_from"`
	VertexTo   string `json:"vertex_to"`
	Snapshot   string `json:"snapshot"`
}

// Edge is a directed edge inside a built graph or extracted subgraph.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// SubgraphResult holds the weight aggregates and structure of one
// extraction rooted at Root.
type SubgraphResult struct {
	Root           string             `json:"root"`
	NodeWeight     float64            `json:"node_weight"`
	SubgraphWeight float64            `json:"subgraph_weight"`
	Nodes          []string           `json:"nodes"`
	Edges          []Edge             `json:"edges"`
	NodeWeights    map[string]float64 `json:"node_weights"`
}

// NodeMetrics carries the per-vertex structural metrics of a subgraph.
// SubgraphWeight here is local: the vertex plus its own descendants within
// the extracted subgraph, not the root's total.
type NodeMetrics struct {
	Node            string  `json:"id"`
	Weight          float64 `json:"weight"`
	SubgraphWeight  float64 `json:"subgraph_weight"`
	Degree          int     `json:"degree"`
	Betweenness     float64 `json:"betweenness"`
	Closeness       float64 `json:"closeness"`
	Eigenvector     float64 `json:"eigenvector"`
	ClusteringCoeff float64 `json:"clustering_coeff"`

	// EigenvectorMethod records which strategy produced the eigenvector
	// value: "eigen", "power" or "degree". Diagnostic only.
	EigenvectorMethod string `json:"eigenvector_method,omitempty"`
}

// NetworkMetrics are the subgraph-level rollups. AverageShortestPath is
// nil whenever the subgraph is not strongly connected.
type NetworkMetrics struct {
	TotalNodes          int      `json:"total_nodes"`
	TotalEdges          int      `json:"total_edges"`
	AverageDegree       float64  `json:"average_degree"`
	Density             float64  `json:"density"`
	AverageClustering   float64  `json:"average_clustering"`
	AverageShortestPath *float64 `json:"average_shortest_path"`
}

// ResultRecord is the representation-neutral output of one processing
// call. External formatters key off these exact field names.
type ResultRecord struct {
	RootNode       string         `json:"root_node"`
	NodeWeight     float64        `json:"node_weight"`
	SubgraphWeight float64        `json:"subgraph_weight"`
	Nodes          []NodeMetrics  `json:"nodes"`
	Edges          []Edge         `json:"edges"`
	NetworkMetrics NetworkMetrics `json:"network_metrics"`
}

// ExportRow is one line of the bulk offline dump: the full-closure
// aggregates for a single processed vertex of a snapshot.
type ExportRow struct {
	Snapshot        string  `json:"snapshot"`
	Node            string  `json:"node"`
	NodeWeight      float64 `json:"node_weight"`
	SubgraphWeight  float64 `json:"subgraph_weight"`
	DescendantCount int     `json:"descendant_count"`
}
