package core

import (
	"github.com/weftlabs/strata/internal/core/model"
)

// Assemble merges the extraction aggregates with the computed metrics
// into the unified result record. Pure data combination: no computation
// happens here, and the field identities are part of the external
// contract that formatters key off.
func Assemble(res model.SubgraphResult, nodes []model.NodeMetrics, network model.NetworkMetrics) model.ResultRecord {
	return model.ResultRecord{
		RootNode:       res.Root,
		NodeWeight:     res.NodeWeight,
		SubgraphWeight: res.SubgraphWeight,
		Nodes:          nodes,
		Edges:          res.Edges,
		NetworkMetrics: network,
	}
}
