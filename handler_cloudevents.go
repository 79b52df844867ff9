package fanout

import (
	"iter"
	"slices"
)

type cloudEventsHandler struct{}

func (cloudEventsHandler) Messages(batch []CloudEvent) iter.Seq[CloudEvent] {
	return slices.Values(batch)
}

func (cloudEventsHandler) Identifier(e CloudEvent) string {
	return e.ID
}

// Body prefers data_base64 and falls back to the raw JSON of data. A null
// data attribute is no data.
func (cloudEventsHandler) Body(e CloudEvent) BodyFunc {
	if len(e.DataBase64) > 0 {
		return bytesBody(e.DataBase64)
	}
	if string(e.Data) == "null" {
		return bytesBody(nil)
	}
	return bytesBody(e.Data)
}

func (cloudEventsHandler) Response(failures []string, cfg Config) (any, bool) {
	if !cfg.AdvancedEventHandling.CloudEvents.ReportBatchItemFailures {
		return nil, false
	}
	return BatchItemFailures{
		BatchItemFailures: itemFailures(failures, func(id string) BatchItemFailure {
			return BatchItemFailure{ItemIdentifier: id}
		}),
	}, true
}

func (cloudEventsHandler) MessageType() MessageType {
	return MessageCloudEvent
}
