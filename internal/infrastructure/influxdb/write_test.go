package influxdb

import (
	"errors"
	"sync"
	"testing"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// fakeWriter captures points instead of sending them.
type fakeWriter struct {
	mu      sync.Mutex
	points  []*write.Point
	flushes int
}

func (f *fakeWriter) WritePoint(p *write.Point) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = append(f.points, p)
}

func (f *fakeWriter) Flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
}

func newTestClient() (*Client, *fakeWriter) {
	w := &fakeWriter{}
	return &Client{writeAPI: w, connected: true}, w
}

func tagsOf(p *write.Point) map[string]string {
	out := map[string]string{}
	for _, tag := range p.TagList() {
		out[tag.Key] = tag.Value
	}
	return out
}

func fieldsOf(p *write.Point) map[string]interface{} {
	out := map[string]interface{}{}
	for _, f := range p.FieldList() {
		out[f.Key] = f.Value
	}
	return out
}

func TestNodeTelemetry_Points(t *testing.T) {
	c, w := newTestClient()
	tel := c.Telemetry("pio_micro_ros")

	tel.RecordButtonPress(42)
	tel.RecordActuator(true)
	tel.RecordBridgeStats(9, 1, 0)
	tel.RecordFault("executor", errors.New("no memory"))

	if len(w.points) != 4 {
		t.Fatalf("wrote %d points, want 4", len(w.points))
	}

	tests := []struct {
		measurement string
		field       string
		want        interface{}
	}{
		{MeasurementButton, "counter", int64(42)},
		{MeasurementActuator, "on", true},
		{MeasurementBridge, "dropped", uint64(1)},
		{MeasurementFault, "error", "no memory"},
	}
	for i, tt := range tests {
		p := w.points[i]
		if p.Name() != tt.measurement {
			t.Errorf("point %d measurement = %q, want %q", i, p.Name(), tt.measurement)
		}
		if tagsOf(p)["node"] != "pio_micro_ros" {
			t.Errorf("point %d node tag = %q", i, tagsOf(p)["node"])
		}
		if got := fieldsOf(p)[tt.field]; got != tt.want {
			t.Errorf("point %d field %s = %v (%T), want %v", i, tt.field, got, got, tt.want)
		}
	}
	if tagsOf(w.points[3])["step"] != "executor" {
		t.Error("fault point missing step tag")
	}
}

func TestWrite_AfterCloseIsDropped(t *testing.T) {
	c, w := newTestClient()
	_ = c.Close()

	c.WriteButtonPress("n", 1)
	c.Flush()

	if len(w.points) != 0 {
		t.Errorf("wrote %d points after Close, want 0", len(w.points))
	}
	if w.flushes != 1 {
		t.Errorf("flushes = %d, want exactly the one from Close", w.flushes)
	}
}

func TestRecordFault_NilError(t *testing.T) {
	c, w := newTestClient()
	c.Telemetry("n").RecordFault("unknown", nil)

	if got := fieldsOf(w.points[0])["error"]; got != "" {
		t.Errorf("error field = %v, want empty string", got)
	}
}
