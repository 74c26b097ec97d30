package journal

import "context"

// FaultRecorder writes the node's setup fault to the journal. It satisfies
// node.FaultRecorder.
type FaultRecorder struct {
	repo   Repository
	node   string
	bootID string
}

// NewFaultRecorder binds faults to a node name and boot. bootID may be empty.
func NewFaultRecorder(repo Repository, nodeName, bootID string) *FaultRecorder {
	return &FaultRecorder{repo: repo, node: nodeName, bootID: bootID}
}

// RecordFault stores step and cause as one fault row.
func (r *FaultRecorder) RecordFault(ctx context.Context, step string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	_, err := r.repo.RecordFault(ctx, Fault{
		BootID:  r.bootID,
		Node:    r.node,
		Step:    step,
		Message: msg,
	})
	return err
}
