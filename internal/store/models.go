package store

import "time"

// LogEntry is one registered version in the log tree.
type LogEntry struct {
	ID        string    `bson:"_id"`
	N         int       `bson:"n"`
	Branch    string    `bson:"branch"`
	Timestamp time.Time `bson:"timestamp"`
	Message   string    `bson:"message"`
	PrevID    string    `bson:"prev_id,omitempty"`
	NextIDs   []string  `bson:"next_ids,omitempty"`
}

// BranchRecord locates the tip version of a branch.
type BranchRecord struct {
	Name      string `bson:"_id"`
	TipN      int    `bson:"tip_n"`
	TipBranch string `bson:"tip_branch"`
}

// Metadata is the engine's singleton state record.
type Metadata struct {
	ID            int    `bson:"_id"`
	CurrentN      int    `bson:"current_n"`
	CurrentBranch string `bson:"current_branch"`
	Detached      bool   `bson:"detached"`
	Changed       bool   `bson:"changed"`
	HasStash      bool   `bson:"has_stash"`
	HasConflicts  bool   `bson:"has_conflicts"`
	ResumeToken   []byte `bson:"resume_token,omitempty"`
}

// metadataSingletonID is the fixed _id of the one metadata document.
const metadataSingletonID = 1

// DeltaRecord is one invertible structural diff registered against a
// version, for one document.
type DeltaRecord struct {
	ID         string    `bson:"_id"`
	DocumentID string    `bson:"document_id"`
	VersionN   int       `bson:"version_n"`
	Branch     string    `bson:"branch"`
	Timestamp  time.Time `bson:"timestamp"`
	Forward    []byte    `bson:"forward"`
	Backward   []byte    `bson:"backward"`
	PrevID     string    `bson:"prev_id,omitempty"`
	NextIDs    []string  `bson:"next_ids,omitempty"`
}

// ModifiedOp is the kind of change a modified tracker records.
type ModifiedOp string

// The three change-stream operation kinds the listener coalesces.
const (
	OpInsert ModifiedOp = "insert"
	OpUpdate ModifiedOp = "update"
	OpDelete ModifiedOp = "delete"
)

// Modified is a per-document change tracker awaiting the next register.
type Modified struct {
	DocumentID string     `bson:"_id"`
	Op         ModifiedOp `bson:"op"`
}

// Conflict is one unresolved three-way-merge conflict on a document.
type Conflict struct {
	DocumentID        string `bson:"_id"`
	Destination       []byte `bson:"destination"`
	Source            []byte `bson:"source"`
	Merged            []byte `bson:"merged"`
	DestinationBranch string `bson:"destination_branch"`
	SourceBranch      string `bson:"source_branch"`
}

// Lock is the cross-process re-entrant lock record for one tracked
// collection.
type Lock struct {
	CollectionName string `bson:"_id"`
	Locked         bool   `bson:"locked"`
	HolderID       string `bson:"holder_id,omitempty"`
	Depth          int    `bson:"depth"`
	Epoch          int64  `bson:"epoch"`
}
