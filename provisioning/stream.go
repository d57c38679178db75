package provisioning

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sitewarden/sitecloner/interfaces"
)

// Event types of the template endpoint streams.
const (
	eventProgress = "progress"
	eventTemplate = "template"
	eventDone     = "done"
	eventError    = "error"
)

// streamEvent is one line of the newline-delimited JSON stream emitted by
// the template endpoints. Progress events repeat; exactly one terminal event
// (template, done or error) ends the stream.
type streamEvent struct {
	Type     string `json:"type"`
	Message  string `json:"message,omitempty"`
	Step     int    `json:"step,omitempty"`
	Total    int    `json:"total,omitempty"`
	Template []byte `json:"template,omitempty"`
	Error    string `json:"error,omitempty"`
}

// decodeEventStream consumes an event stream, forwarding progress events to
// the reporter as they arrive, and returns the terminal event. A stream that
// ends without a terminal event, carries an error event, or contains an
// unknown event type fails.
func decodeEventStream(body io.Reader, progress interfaces.ProgressReporter) (*streamEvent, error) {
	dec := json.NewDecoder(body)
	for {
		var event streamEvent
		if err := dec.Decode(&event); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("event stream ended without a terminal event")
			}
			return nil, fmt.Errorf("failed to decode event stream: %w", err)
		}

		switch event.Type {
		case eventProgress:
			if progress != nil {
				progress.Progress(event.Message, event.Step, event.Total)
			}
		case eventTemplate, eventDone:
			return &event, nil
		case eventError:
			if event.Error == "" {
				return nil, errors.New("remote reported an unspecified error")
			}
			return nil, errors.New(event.Error)
		default:
			return nil, fmt.Errorf("unexpected event type %q in stream", event.Type)
		}
	}
}
