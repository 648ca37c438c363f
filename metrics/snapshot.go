package metrics

import (
	"time"

	"github.com/viant/bintly"
)

// Snapshot captures one metrics collection run.
type Snapshot struct {
	CollectedAt        time.Time `json:"collection_time"`
	ProjectCount       int       `json:"project_count"`
	RecentCommits      int       `json:"recent_commits"`
	TotalFiles         int       `json:"total_files"`
	ProjectsMonitored  int       `json:"projects_monitored"`
	TotalModifications int       `json:"total_modifications"`
	RecentChanges      int       `json:"recent_changes"`
	TotalWorkflows     int       `json:"total_workflows"`
	ActiveWorkflows    int       `json:"active_workflows"`
	TotalScripts       int       `json:"total_scripts"`
}

// EncodeBinary encodes the snapshot to a binary stream
func (s *Snapshot) EncodeBinary(stream *bintly.Writer) error {
	stream.Time(s.CollectedAt)
	stream.Int(s.ProjectCount)
	stream.Int(s.RecentCommits)
	stream.Int(s.TotalFiles)
	stream.Int(s.ProjectsMonitored)
	stream.Int(s.TotalModifications)
	stream.Int(s.RecentChanges)
	stream.Int(s.TotalWorkflows)
	stream.Int(s.ActiveWorkflows)
	stream.Int(s.TotalScripts)
	return nil
}

// DecodeBinary decodes the snapshot from a binary stream
func (s *Snapshot) DecodeBinary(stream *bintly.Reader) error {
	stream.Time(&s.CollectedAt)
	stream.Int(&s.ProjectCount)
	stream.Int(&s.RecentCommits)
	stream.Int(&s.TotalFiles)
	stream.Int(&s.ProjectsMonitored)
	stream.Int(&s.TotalModifications)
	stream.Int(&s.RecentChanges)
	stream.Int(&s.TotalWorkflows)
	stream.Int(&s.ActiveWorkflows)
	stream.Int(&s.TotalScripts)
	return nil
}

// Marshal encodes the snapshot into a payload blob.
func (s *Snapshot) Marshal() ([]byte, error) {
	writers := bintly.NewWriters()
	writer := writers.Get()
	defer writers.Put(writer)
	if err := s.EncodeBinary(writer); err != nil {
		return nil, err
	}
	return writer.Bytes(), nil
}

// Unmarshal decodes the snapshot from a payload blob.
func (s *Snapshot) Unmarshal(data []byte) error {
	readers := bintly.NewReaders()
	reader := readers.Get()
	defer readers.Put(reader)
	if err := reader.FromBytes(data); err != nil {
		return err
	}
	return s.DecodeBinary(reader)
}
