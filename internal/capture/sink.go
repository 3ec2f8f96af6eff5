package capture

import "uirecorder/internal/models"

// Sink receives every emitted record in step order. Record is called with
// the driver locked and must not call back into the Driver.
type Sink interface {
	Record(rec models.ActionRecord)
}

type SinkFunc func(rec models.ActionRecord)

func (f SinkFunc) Record(rec models.ActionRecord) { f(rec) }

// MultiSink fans each record out to every sink in order.
type MultiSink []Sink

func (m MultiSink) Record(rec models.ActionRecord) {
	for _, s := range m {
		if s != nil {
			s.Record(rec)
		}
	}
}
