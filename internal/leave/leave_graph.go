package leave

import (
	leaveerrors "go-leave/internal/leave/errors"

	"github.com/anggasct/fluo"
)

// stateNew is the source of the creating edges. Stored applications never
// carry it.
const stateNew = "NEW"

type edge struct {
	from, to string
}

var (
	statusGraph = buildStatusGraph()
	statusEdges = collectEdges(statusGraph)
)

func buildStatusGraph() fluo.MachineDefinition {
	b := fluo.NewMachine()

	b.State(stateNew).Initial().
		To(string(StatusWaiting)).On("submit").
		To(string(StatusAllowed)).On("direct_allow").
		To(string(StatusAllowed)).On("convert")

	b.State(string(StatusWaiting)).
		To(string(StatusTemporaryAllowed)).On("approve_temporary").
		To(string(StatusAllowed)).On("approve").
		To(string(StatusRejected)).On("reject").
		To(string(StatusRevoked)).On("cancel").
		To(string(StatusCancelled)).On("direct_cancel")

	b.State(string(StatusTemporaryAllowed)).
		To(string(StatusAllowed)).On("approve").
		To(string(StatusRejected)).On("reject").
		To(string(StatusCancelled)).On("cancel").
		To(string(StatusAllowedCancellationRequested)).On("request_cancellation")

	b.State(string(StatusAllowed)).
		To(string(StatusCancelled)).On("cancel").
		To(string(StatusAllowedCancellationRequested)).On("request_cancellation")

	b.State(string(StatusAllowedCancellationRequested)).
		To(string(StatusAllowed)).On("decline_cancellation").
		To(string(StatusCancelled)).On("cancel")

	b.State(string(StatusRejected)).Final()
	b.State(string(StatusCancelled)).Final()
	b.State(string(StatusRevoked)).Final()

	return b.Build()
}

func collectEdges(def fluo.MachineDefinition) map[edge]bool {
	edges := make(map[edge]bool)
	for _, ts := range def.GetTransitions() {
		for _, t := range ts {
			edges[edge{from: t.SourceState, to: t.TargetState}] = true
		}
	}
	return edges
}

// ValidateStatusChange reports whether moving from one status to another is
// an edge of the status graph. An empty from is a new application. Keeping
// the status is always allowed.
func ValidateStatusChange(from, to Status) error {
	if from == to {
		return nil
	}
	src := string(from)
	if from == "" {
		src = stateNew
	}
	if !statusEdges[edge{from: src, to: string(to)}] {
		return leaveerrors.ErrInvalidStatusTransition
	}
	return nil
}
