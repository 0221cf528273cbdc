package hwbench

import (
	"context"
	"fmt"
	"sync"
)

// ReplaySource plays back a scripted series of readings, one per query,
// wrapping around at the end. It is used for dry runs of a bench plan.
type ReplaySource struct {
	Name   string    // reading name, default "Replay"
	Values []float64 // readings in playback order

	mu   sync.Mutex
	next int
}

// NewReplaySource returns a ReplaySource for values.
func NewReplaySource(values ...float64) *ReplaySource {
	return &ReplaySource{Name: "Replay", Values: values}
}

// Query implements Source.
func (r *ReplaySource) Query(ctx context.Context, hw HardwareType, st SensorType) ([]Sensor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.Values) == 0 {
		return nil, fmt.Errorf("%w: replay source is empty", ErrDataUnavailable)
	}
	i := r.next % len(r.Values)
	r.next++
	v := r.Values[i]
	return []Sensor{{
		Name:       r.Name,
		Identifier: fmt.Sprintf("replay/%d", i),
		Type:       st,
		Parent:     hw,
		Value:      v,
		Min:        v,
		Max:        v,
		Index:      i,
		Data:       formatValue(v),
	}}, nil
}
