package model

// Community is a group of neurons that share more synapses with each other
// than with the rest of the partner graph.
type Community struct {
	Label   NeuronID   `json:"label"`
	Members []NeuronID `json:"members"`
	// Weight is the number of synapse rows with both ends inside the community.
	Weight int `json:"weight"`
}
