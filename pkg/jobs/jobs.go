// Package jobs moves combine work through a message queue so large
// merges run off the request path. A CombineJob names stored source
// documents and the output artifact to produce; Queue implementations
// carry jobs over Azure Service Bus or an in-process buffer, Consumer
// runs a worker pool over a Queue, and Processor executes one job end
// to end against a storage.Store.
package jobs

import (
	"errors"
	"fmt"
	"strings"
)

// DocumentRequest names one stored source document inside a job.
type DocumentRequest struct {
	// Source is the document's name in the backing store.
	Source string `json:"source"`
	// Pages is an optional page range expression such as "1-3,7".
	// Empty means every page.
	Pages string `json:"pages,omitempty"`
	// Orientation optionally forces "portrait" or "landscape" for
	// this document's pages.
	Orientation string `json:"orientation,omitempty"`
}

// OutputSpec describes where the combined artifact lands.
type OutputSpec struct {
	// Name is the artifact's name in the backing store, before the
	// processor's output prefix is applied.
	Name string `json:"name"`
}

// CombineJob is the queue wire format for one combine request.
type CombineJob struct {
	ID          string            `json:"id"`
	Documents   []DocumentRequest `json:"documents"`
	Orientation string            `json:"orientation,omitempty"`
	Duplex      bool              `json:"duplex,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Output      OutputSpec        `json:"output"`
}

// Validate reports whether the job describes a runnable combine.
// Orientation strings and page ranges are checked at execution time,
// where their errors carry document context.
func (j *CombineJob) Validate() error {
	if len(j.Documents) == 0 {
		return errors.New("jobs: job has no documents")
	}
	for i, doc := range j.Documents {
		if strings.TrimSpace(doc.Source) == "" {
			return fmt.Errorf("jobs: document %d has no source", i+1)
		}
	}
	if strings.TrimSpace(j.Output.Name) == "" {
		return errors.New("jobs: job has no output name")
	}
	return nil
}
