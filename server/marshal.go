package server

import (
	"encoding/json"

	"github.com/tlinden-labs/tierrasoup/simulator"
)

// MarshalView serializes a SimulatorView snapshot for broadcast. Callers
// obtain the view from sim.View() on the goroutine that owns the
// simulation, then pass the result here and to Publish from that same
// goroutine — this function itself touches no shared state.
func MarshalView(view simulator.SimulatorView) ([]byte, error) {
	return json.Marshal(view)
}
