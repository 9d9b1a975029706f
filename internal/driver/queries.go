package driver

var IndexQueries = []string{
	"CREATE INDEX ON :Neuron(root_id);",
	"CREATE INDEX ON :Treenode(id);",
	"CREATE INDEX ON :Treenode(skeleton_id);",
	"CREATE INDEX ON :Connector(id);",
}

const (
	SaveSynapseQuery = `
		MERGE (pre:Neuron {root_id: $pre_id})
		MERGE (post:Neuron {root_id: $post_id})
		MERGE (pre)-[s:SYNAPSE {id: $id}]->(post)
		SET s.size = $size,
			s.x = $x,
			s.y = $y,
			s.z = $z
		RETURN s.id AS id
	`

	// Synapses onto a neuron, i.e. its presynaptic partners.
	SynapsesByPostQuery = `
		MATCH (pre:Neuron)-[s:SYNAPSE]->(post:Neuron {root_id: $root_id})
		RETURN s.id AS id, pre.root_id AS pre_pt_root_id, post.root_id AS post_pt_root_id,
			s.size AS size, s.x AS x, s.y AS y, s.z AS z
		ORDER BY s.id
	`

	// Synapses made by a neuron, i.e. its postsynaptic partners.
	SynapsesByPreQuery = `
		MATCH (pre:Neuron {root_id: $root_id})-[s:SYNAPSE]->(post:Neuron)
		RETURN s.id AS id, pre.root_id AS pre_pt_root_id, post.root_id AS post_pt_root_id,
			s.size AS size, s.x AS x, s.y AS y, s.z AS z
		ORDER BY s.id
	`

	SaveTreenodeQuery = `
		MERGE (n:Treenode {id: $id})
		SET n.skeleton_id = $skeleton_id,
			n.x = $x,
			n.y = $y,
			n.z = $z
		RETURN n.id AS id
	`

	SaveConnectorQuery = `
		MERGE (c:Connector {id: $id})
		RETURN c.id AS id
	`

	LinkPresynapticQuery = `
		MATCH (n:Treenode {id: $node_id})
		MATCH (c:Connector {id: $connector_id})
		MERGE (n)-[:PRESYNAPTIC_TO]->(c)
	`

	LinkPostsynapticQuery = `
		MATCH (n:Treenode {id: $node_id})
		MATCH (c:Connector {id: $connector_id})
		MERGE (c)-[:POSTSYNAPTIC_TO]->(n)
	`

	// Every connector touching a skeleton, on either side, with both sides resolved.
	ConnectorDetailsQuery = `
		MATCH (t:Treenode {skeleton_id: $skeleton_id})-[:PRESYNAPTIC_TO|POSTSYNAPTIC_TO]-(c:Connector)
		WITH DISTINCT c
		OPTIONAL MATCH (pre:Treenode)-[:PRESYNAPTIC_TO]->(c)
		OPTIONAL MATCH (c)-[:POSTSYNAPTIC_TO]->(post:Treenode)
		RETURN c.id AS connector_id, pre.skeleton_id AS presynaptic_to, pre.id AS presynaptic_to_node,
			collect(post.skeleton_id) AS postsynaptic_to, collect(post.id) AS postsynaptic_to_node
		ORDER BY connector_id
	`

	NodeLocationsQuery = `
		UNWIND $node_ids AS node_id
		MATCH (n:Treenode {id: node_id})
		RETURN n.id AS id, n.x AS x, n.y AS y, n.z AS z
	`
)
